package settings

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/reportcard/core"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Settings struct {
	Theme        string    `json:"theme" validate:"oneof=light dark"`
	WelcomeShown bool      `json:"welcome_shown"`
	LastBackup   null.Time `json:"last_backup"`
}

func Default() Settings {
	return Settings{Theme: ThemeLight}
}

func (s Settings) IsDark() bool {
	return s.Theme == ThemeDark
}

// UpdateSettings defines the settings that may be changed. Nil fields are left untouched.
type UpdateSettings struct {
	Theme        *string `json:"theme" validate:"omitempty,oneof=light dark"`
	WelcomeShown *bool   `json:"welcome_shown"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	if us.Theme != nil {
		theme := core.CleanString(*us.Theme, true /* lower */)
		us.Theme = &theme
	}
	return validate.Struct(us)
}

type Repository interface {
	// GetSettings returns Default() when nothing is stored yet.
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	// ModifySettings applies fn to the stored settings and saves them as one atomic step.
	ModifySettings(ctx context.Context, fn func(s *Settings) error) (Settings, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Get(ctx context.Context) (Settings, error) {
	return svc.repo.GetSettings(ctx)
}

func (svc *Service) Update(ctx context.Context, us UpdateSettings) (Settings, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Settings{}, err
	}
	return svc.modify(ctx, func(s *Settings) {
		if us.Theme != nil {
			s.Theme = *us.Theme
		}
		if us.WelcomeShown != nil {
			s.WelcomeShown = *us.WelcomeShown
		}
	})
}

// ToggleTheme switches between the light and dark themes.
func (svc *Service) ToggleTheme(ctx context.Context) (Settings, error) {
	return svc.modify(ctx, func(s *Settings) {
		if s.IsDark() {
			s.Theme = ThemeLight
		} else {
			s.Theme = ThemeDark
		}
	})
}

func (svc *Service) MarkBackup(ctx context.Context, t time.Time) (Settings, error) {
	return svc.modify(ctx, func(s *Settings) {
		s.LastBackup = null.TimeFrom(t.UTC())
	})
}

func (svc *Service) modify(ctx context.Context, fn func(s *Settings)) (Settings, error) {
	s, err := svc.repo.ModifySettings(ctx, func(s *Settings) error {
		fn(s)
		return nil
	})
	return s, errors.Wrap(err, "saving settings")
}
