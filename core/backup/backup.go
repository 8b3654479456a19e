package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/settings"
	"github.com/trezcool/reportcard/core/student"
)

const Version = "1.0.0"

var (
	// errors
	ErrNothingToImport = errors.New("no students, comments or settings to import")
	ErrInvalidImport   = errors.New("invalid backup data")

	emailTemplate = "backup"
)

// Data is the export format of every record collection.
// On import, nil collections leave the stored ones untouched.
type Data struct {
	Students   []student.Student  `json:"students" validate:"dive"`
	Comments   []comment.Comment  `json:"comments" validate:"dive"`
	Settings   *settings.Settings `json:"settings"`
	ExportDate time.Time          `json:"exportDate"`
	Version    string             `json:"version"`
}

func (d Data) IsEmpty() bool {
	return d.Students == nil && d.Comments == nil && d.Settings == nil
}

// check rejects duplicate IDs and comments of unknown students. studentIDs are the students the comments may refer to.
func (d Data) check(studentIDs map[string]bool) error {
	var flds []core.FieldError
	seen := make(map[string]bool, len(d.Students))
	for i, s := range d.Students {
		if seen[s.ID] {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("students[%d].id", i), Error: fmt.Sprintf("duplicate id %q", s.ID)})
		}
		seen[s.ID] = true
	}
	seen = make(map[string]bool, len(d.Comments))
	for i, c := range d.Comments {
		if seen[c.ID] {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("comments[%d].id", i), Error: fmt.Sprintf("duplicate id %q", c.ID)})
		}
		seen[c.ID] = true
		if !studentIDs[c.StudentID] {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("comments[%d].student_id", i), Error: fmt.Sprintf("unknown student %q", c.StudentID)})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidImport, flds...)
	}
	return nil
}

// Filename is the name of the attached backup file.
func (d Data) Filename() string {
	return "reportcard-backup-" + d.ExportDate.Format("2006-01-02") + ".json"
}

type Repository interface {
	QueryAllStudents(ctx context.Context) ([]student.Student, error)
	QueryAllComments(ctx context.Context) ([]comment.Comment, error)
	GetSettings(ctx context.Context) (settings.Settings, error)

	ReplaceStudents(ctx context.Context, students []student.Student) error
	ReplaceComments(ctx context.Context, comments []comment.Comment) error
	SaveSettings(ctx context.Context, s settings.Settings) error
	// Clear removes every stored collection.
	Clear(ctx context.Context) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	settings *settings.Service
	mailSvc  core.EmailService
	logger   core.Logger
	email    string
}

// NowFunc is mocked in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

// NewService returns a backup Service. Backups are mailed to email when it is not empty.
func NewService(
	repo Repository,
	validate *validator.Validate,
	settingsSvc *settings.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	email string,
) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		settings: settingsSvc,
		mailSvc:  mailSvc,
		logger:   logger,
		email:    core.CleanString(email),
	}
}

func (svc *Service) Export(ctx context.Context) (Data, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return Data{}, errors.Wrap(err, "querying students")
	}
	comments, err := svc.repo.QueryAllComments(ctx)
	if err != nil {
		return Data{}, errors.Wrap(err, "querying comments")
	}
	s, err := svc.repo.GetSettings(ctx)
	if err != nil {
		return Data{}, errors.Wrap(err, "getting settings")
	}
	return Data{
		Students:   students,
		Comments:   comments,
		Settings:   &s,
		ExportDate: NowFunc(),
		Version:    Version,
	}, nil
}

// Import overwrites the stored collections present in data. Nothing is written unless every record is valid.
func (svc *Service) Import(ctx context.Context, data Data) error {
	if data.IsEmpty() {
		return core.NewValidationError(ErrNothingToImport)
	}
	if err := svc.validate.Struct(data); err != nil {
		return err
	}

	students := data.Students
	if students == nil {
		var err error
		if students, err = svc.repo.QueryAllStudents(ctx); err != nil {
			return errors.Wrap(err, "querying students")
		}
	}
	studentIDs := make(map[string]bool, len(students))
	for _, s := range students {
		studentIDs[s.ID] = true
	}
	if err := data.check(studentIDs); err != nil {
		return err
	}

	if data.Students != nil {
		if err := svc.repo.ReplaceStudents(ctx, data.Students); err != nil {
			return errors.Wrap(err, "importing students")
		}
	}
	if data.Comments != nil {
		if err := svc.repo.ReplaceComments(ctx, data.Comments); err != nil {
			return errors.Wrap(err, "importing comments")
		}
	}
	if data.Settings != nil {
		if err := svc.repo.SaveSettings(ctx, *data.Settings); err != nil {
			return errors.Wrap(err, "importing settings")
		}
	}
	return nil
}

func (svc *Service) Clear(ctx context.Context) error {
	return errors.Wrap(svc.repo.Clear(ctx), "clearing data")
}

// Backup exports all data, mails it when a backup email is configured and records the backup time.
func (svc *Service) Backup(ctx context.Context) (Data, error) {
	data, err := svc.Export(ctx)
	if err != nil {
		return Data{}, err
	}

	if svc.email != "" {
		msg, err := svc.newMessage(data)
		if err != nil {
			return Data{}, err
		}
		svc.mailSvc.SendMessages(msg)
	}

	s, err := svc.settings.MarkBackup(ctx, data.ExportDate)
	if err != nil {
		return Data{}, err
	}
	data.Settings = &s
	svc.logger.Info("data backed up", core.Fields{
		"students": len(data.Students),
		"comments": len(data.Comments),
		"mailed":   svc.email != "",
	})
	return data, nil
}

func (svc *Service) newMessage(data Data) (*core.EmailMessage, error) {
	to, err := mail.ParseAddress(svc.email)
	if err != nil {
		return nil, errors.Wrap(err, "parsing backup email")
	}
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding backup")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      "Backup " + data.ExportDate.Format("2006-01-02"),
		TemplateName: emailTemplate,
		TemplateData: data,
	}
	if err := msg.Attach(bytes.NewReader(content), data.Filename(), "application/json"); err != nil {
		return nil, err
	}
	return msg, nil
}
