package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/reportcard/storage/database"
)

var (
	// mockable
	openDBFunc  = database.Open
	migrateFunc = database.Migrate
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a migration command (up, down, status, ...) against the SQL storage",
		Long: "Run a goose migration command against the SQL storage.\n" +
			"Only available with the postgres and sqlite storage engines.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cli.c.Conf
			if !conf.IsSQL() {
				return database.ErrNotSQL
			}
			db, err := openDBFunc(conf)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return migrateFunc(cmd.Context(), db, conf.Storage.Engine, args[0], args[1:]...)
		},
	}
}
