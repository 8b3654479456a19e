package comment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/reportcard/core"
)

// Tones
const (
	TonePositive = "positive"
	ToneNeutral  = "neutral"
	ToneNegative = "negative"
)

const (
	MinContentLen = 10
	MaxContentLen = 500
)

var (
	Tones   = []string{TonePositive, ToneNeutral, ToneNegative}
	Periods = []int{1, 2}

	toneLabels = map[string]string{
		TonePositive: "Positive",
		ToneNeutral:  "Neutral",
		ToneNegative: "Negative",
	}
	toneColors = map[string]string{
		TonePositive: "bg-green-500",
		ToneNeutral:  "bg-yellow-500",
		ToneNegative: "bg-red-500",
	}
)

func ToneLabel(tone string) string {
	if l, ok := toneLabels[tone]; ok {
		return l
	}
	return tone
}

func ToneColor(tone string) string {
	if c, ok := toneColors[tone]; ok {
		return c
	}
	return "bg-gray-500"
}

type Comment struct {
	ID        string    `json:"id" validate:"required"`
	StudentID string    `json:"student_id" validate:"required"`
	Content   string    `json:"content" validate:"required,min=10,max=500"`
	Tone      string    `json:"tone" validate:"tone"`
	Period    int       `json:"period" validate:"period"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c Comment) IsBlank() bool {
	return strings.TrimSpace(c.Content) == ""
}

// NewComment contains information needed to create a new Comment.
type NewComment struct {
	StudentID string   `json:"student_id" validate:"required"`
	Content   string   `json:"content" validate:"required,min=10,max=500"`
	Tone      string   `json:"tone" validate:"tone"`
	Period    int      `json:"period" validate:"period"`
	Tags      []string `json:"tags"`
}

// Clean trims inputs, applies defaults and replaces the placeholder with the student's first name.
func (nc *NewComment) Clean(studentName string) {
	nc.StudentID = core.CleanString(nc.StudentID)
	nc.Content = core.CleanString(ApplyName(nc.Content, studentName))
	nc.Tone = core.CleanString(nc.Tone, true /* lower */)
	if nc.Tone == "" {
		nc.Tone = TonePositive
	}
	if nc.Period == 0 {
		nc.Period = 1
	}
	nc.Tags = cleanTags(nc.Tags)
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

// UpdateComment defines what information may be provided to modify an existing Comment.
// Empty Tone and zero Period keep their original value; nil Tags keep the original tags.
type UpdateComment struct {
	Content string   `json:"content" validate:"required,min=10,max=500"`
	Tone    string   `json:"tone" validate:"tone"`
	Period  int      `json:"period" validate:"period"`
	Tags    []string `json:"tags"`
}

func (uc *UpdateComment) Clean(orig Comment, studentName string) {
	uc.Content = core.CleanString(ApplyName(uc.Content, studentName))
	uc.Tone = core.CleanString(uc.Tone, true /* lower */)
	if uc.Tone == "" {
		uc.Tone = orig.Tone
	}
	if uc.Period == 0 {
		uc.Period = orig.Period
	}
	if uc.Tags == nil {
		uc.Tags = orig.Tags
	} else {
		uc.Tags = cleanTags(uc.Tags)
	}
}

func (uc *UpdateComment) Validate(validate *validator.Validate) error {
	return validate.Struct(uc)
}

type QueryFilter struct {
	Period    int    `query:"period"`
	Tone      string `query:"tone"`
	StudentID string `query:"student_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Tone = core.CleanString(qf.Tone, true /* lower */)
	qf.StudentID = core.CleanString(qf.StudentID)
}

func (qf *QueryFilter) Match(c Comment) bool {
	if qf.Period != 0 && c.Period != qf.Period {
		return false
	}
	if qf.Tone != "" && c.Tone != qf.Tone {
		return false
	}
	if qf.StudentID != "" && c.StudentID != qf.StudentID {
		return false
	}
	return true
}

func cleanTags(tags []string) []string {
	res := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = core.CleanString(t, true /* lower */)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		res = append(res, t)
	}
	return res
}
