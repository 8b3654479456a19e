// Package di wires the application services from a core.Config.
package di

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/backup"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/dashboard"
	"github.com/trezcool/reportcard/core/settings"
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/core/templates"
	emailsvc "github.com/trezcool/reportcard/services/email"
	logsvc "github.com/trezcool/reportcard/services/logger"
	"github.com/trezcool/reportcard/storage"
	"github.com/trezcool/reportcard/storage/repos"
)

type Container struct {
	Conf       *core.Config
	Logger     core.Logger
	Store      *repos.Store
	MailSvc    core.EmailService
	Validate   *validator.Validate
	Translator ut.Translator

	StudentSvc   *student.Service
	CommentSvc   *comment.Service
	TemplateSvc  *templates.Service
	SettingsSvc  *settings.Service
	DashboardSvc *dashboard.Service
	BackupSvc    *backup.Service
}

// NewLogger returns a RollbarLogger writing to stdout with prefix, reporting outside debug mode.
func NewLogger(conf *core.Config, prefix string) core.Logger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case conf.TestMode:
		return emailsvc.NewConsoleServiceMock(conf, logger)
	case conf.Debug:
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// New opens the configured storage and builds every service on top of it.
func New(ctx context.Context, conf *core.Config, logger core.Logger) (*Container, error) {
	kv, err := storage.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening storage")
	}
	return NewWithStore(ctx, conf, logger, kv)
}

// NewWithStore builds every service on top of kv.
func NewWithStore(ctx context.Context, conf *core.Config, logger core.Logger, kv core.KVStore) (*Container, error) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)
	comment.RegisterValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf.Debug || conf.TestMode)

	catalog, err := templates.Load(ctx, logger, conf.Templates.Dir)
	if err != nil {
		return nil, err
	}

	store := repos.NewStore(kv)
	mailSvc := newEmailService(conf, logger)

	c := &Container{
		Conf:       conf,
		Logger:     logger,
		Store:      store,
		MailSvc:    mailSvc,
		Validate:   validate,
		Translator: translator,
	}
	c.StudentSvc = student.NewService(store.Students, store.Comments, validate)
	c.CommentSvc = comment.NewService(store.Comments, c.StudentSvc, validate)
	c.TemplateSvc = templates.NewService(catalog)
	c.SettingsSvc = settings.NewService(store.Settings, validate)
	c.DashboardSvc = dashboard.NewService(c.StudentSvc, c.CommentSvc, c.TemplateSvc)
	c.BackupSvc = backup.NewService(store, validate, c.SettingsSvc, mailSvc, logger, conf.Backup.Email)
	return c, nil
}

func (c *Container) Close() error {
	return c.Store.Close()
}
