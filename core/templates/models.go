package templates

import (
	"fmt"
	"strings"
)

const (
	// SuggestionLimit caps untagged suggestions.
	SuggestionLimit = 20

	CategoryOther = "Other"
)

var (
	Grades = []int{5, 6, 7, 8}
	Terms  = []int{1, 2}

	// tag categories, in display order
	categories = []tagCategory{
		{"Academic Achievement", []string{"achievement", "academic", "grade", "lesson", "subject", "exam", "homework", "performance", "talent"}},
		{"Behavior", []string{"behavio", "discipline", "rule", "respect", "polite", "courtesy", "harmony"}},
		{"Social Skills", []string{"social", "friend", "communicat", "team", "cooperat", "empathy"}},
		{"Participation", []string{"participat", "active", "activit", "speak", "volunteer", "interest"}},
		{"Study Habits", []string{"study", "organi", "plan", "time", "regular", "tidy"}},
		{"Personal Growth", []string{"growth", "develop", "confiden", "creativ", "leader", "responsib"}},
	}
)

type tagCategory struct {
	name     string
	keywords []string
}

// Category returns the display category of tag.
func Category(tag string) string {
	tag = strings.ToLower(tag)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(tag, kw) {
				return c.name
			}
		}
	}
	return CategoryOther
}

// GradeTerm identifies a template file, eg. 5_1 for the first term of grade 5.
type GradeTerm struct {
	Grade int
	Term  int
}

func (gt GradeTerm) String() string {
	return fmt.Sprintf("%d_%d", gt.Grade, gt.Term)
}

// AllGradeTerms lists every GradeTerm in grade-term order.
func AllGradeTerms() []GradeTerm {
	gts := make([]GradeTerm, 0, len(Grades)*len(Terms))
	for _, g := range Grades {
		for _, t := range Terms {
			gts = append(gts, GradeTerm{Grade: g, Term: t})
		}
	}
	return gts
}

type Template struct {
	ID      string   `json:"id" yaml:"id"`
	Content string   `json:"content" yaml:"content"`
	Tone    string   `json:"tone" yaml:"tone"`
	Tags    []string `json:"tags" yaml:"tags"`
}

func (t Template) HasTone(tone string) bool {
	return tone == "" || t.Tone == tone
}

// HasAnyTag reports whether t carries at least one of tags.
func (t Template) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, tag := range t.Tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

// Suggestion is a Template annotated with its grade and term, ready to be used for a student.
type Suggestion struct {
	Template
	Grade int `json:"grade"`
	Term  int `json:"term"`
}

// SuggestFilter narrows down suggestions. Zero values match everything.
type SuggestFilter struct {
	Grade int      `query:"grade"`
	Term  int      `query:"term"`
	Tone  string   `query:"tone"`
	Tags  []string `query:"tag"`
}

type CategorizedTags struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}
