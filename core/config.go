package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage engines
const (
	EngineMemory   = "memory"
	EngineBadger   = "badger"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail mail.Address

		Server    ServerConfig
		Storage   StorageConfig
		Templates TemplatesConfig
		Backup    BackupConfig
	}

	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	StorageConfig struct {
		Engine   string // memory | badger | postgres | sqlite
		Prefix   string // namespaces every stored key
		Path     string // badger directory or sqlite file
		Database DatabaseConfig
	}

	DatabaseConfig struct {
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	TemplatesConfig struct {
		Dir string // optional override of the embedded comment templates
	}

	BackupConfig struct {
		Email string // backups are mailed here when set
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func (conf *Config) IsSQL() bool {
	return conf.Storage.Engine == EnginePostgres || conf.Storage.Engine == EngineSQLite
}

// NewConfig reads the configuration of the current ENV from the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Report Card Assistant")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromName", "Report Card Assistant")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("storage.engine", EngineBadger)
	v.SetDefault("storage.prefix", "reportcard_")
	v.SetDefault("storage.path", filepath.Join("data", "reportcard"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "reportcard")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "reportcard")
	v.SetDefault("database.disableTLS", false)
	v.SetDefault("templates.dir", "")
	v.SetDefault("backup.email", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("storage.engine", EngineMemory)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:        v.GetString("appName"),
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromName"),
			Address: v.GetString("defaultFromEmail"),
		},
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Storage: StorageConfig{
			Engine: strings.ToLower(v.GetString("storage.engine")),
			Prefix: v.GetString("storage.prefix"),
			Path:   v.GetString("storage.path"),
			Database: DatabaseConfig{
				Host:          v.GetString("database.host"),
				Port:          v.GetString("database.port"),
				User:          v.GetString("database.user"),
				Password:      v.GetString("database.password"),
				AdminUser:     v.GetString("database.adminUser"),
				AdminPassword: v.GetString("database.adminPassword"),
				Name:          v.GetString("database.name"),
				DisableTLS:    v.GetBool("database.disableTLS"),
			},
		},
		Templates: TemplatesConfig{Dir: v.GetString("templates.dir")},
		Backup:    BackupConfig{Email: v.GetString("backup.email")},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory storage, no request logs, no debug output.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Report Card Assistant",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		DefaultFromEmail: mail.Address{Name: "Report Card Assistant", Address: "noreply@localhost"},
		Server: ServerConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Storage: StorageConfig{
			Engine: EngineMemory,
			Prefix: "reportcard_",
		},
	}
}

// configDir is where the .env files live; CONFIG_DIR overrides the default "./config".
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(wd, "config")
}
