package student

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/reportcard/core"
)

const (
	MinGrade = 5
	MaxGrade = 8
)

var (
	Grades   = []int{5, 6, 7, 8}
	Sections = []string{"A", "B", "C", "D", "E"}

	gradeColors = map[int]string{
		5: "bg-grade-5",
		6: "bg-grade-6",
		7: "bg-grade-7",
		8: "bg-grade-8",
	}
)

type Student struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required,min=2"`
	Grade     int       `json:"grade" validate:"required,grade"`
	Section   string    `json:"section" validate:"required,section"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Label is the grade-section of the Student's class, eg. "5-A".
func (s Student) Label() string {
	return fmt.Sprintf("%d-%s", s.Grade, s.Section)
}

func (s Student) FirstName() string {
	return FirstName(s.Name)
}

func (s Student) Initials() string {
	return Initials(s.Name)
}

// GradeColor is the css class of the Student's grade badge.
func (s Student) GradeColor() string {
	return GradeColor(s.Grade)
}

// sameClassmate reports whether s has the given name (case-insensitively) and class.
func (s Student) sameClassmate(name string, grade int, section string) bool {
	return strings.EqualFold(s.Name, name) && s.Grade == grade && s.Section == section
}

func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Initials returns the upper-cased first letters of the first two words of name.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}

func GradeColor(grade int) string {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return "bg-gray-500"
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name    string `json:"name" validate:"required,min=2"`
	Grade   int    `json:"grade" validate:"required,grade"`
	Section string `json:"section" validate:"required,section"`
}

func (ns *NewStudent) Clean() {
	ns.Name = cleanName(ns.Name)
	ns.Section = cleanSection(ns.Section)
}

// Validate cleans and validates the fields. Uniqueness is checked when the Student is stored.
func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// BulkNewStudents creates one Student per non-blank line of Names, all in the same class.
type BulkNewStudents struct {
	Names   string `json:"names" validate:"notblank"`
	Grade   int    `json:"grade" validate:"required,grade"`
	Section string `json:"section" validate:"required,section"`
}

func (bs *BulkNewStudents) Validate(validate *validator.Validate) error {
	bs.Section = cleanSection(bs.Section)
	return validate.Struct(bs)
}

// Lines returns the cleaned, non-blank names.
func (bs BulkNewStudents) Lines() []string {
	lines := strings.Split(bs.Names, "\n")
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		if name := cleanName(l); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// BulkResult reports the outcome of a bulk creation.
type BulkResult struct {
	Added   []Student `json:"added"`
	Skipped []Skipped `json:"skipped"`
}

type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their original value.
type UpdateStudent struct {
	Name    string `json:"name" validate:"omitempty,min=2"`
	Grade   int    `json:"grade" validate:"omitempty,grade"`
	Section string `json:"section" validate:"omitempty,section"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := cleanName(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.Grade == 0 {
		us.Grade = orig.Grade
	}
	if section := cleanSection(us.Section); section != "" {
		us.Section = section
	} else {
		us.Section = orig.Section
	}

	return validate.Struct(us)
}

type QueryFilter struct {
	Grade   int    `query:"grade"`
	Section string `query:"section"`
	Search  string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Grade == 0 && qf.Section == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Section = cleanSection(qf.Section)
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

func (qf *QueryFilter) Match(s Student) bool {
	if qf.Grade != 0 && s.Grade != qf.Grade {
		return false
	}
	if qf.Section != "" && s.Section != qf.Section {
		return false
	}
	if qf.Search != "" && !strings.Contains(strings.ToLower(s.Name), qf.Search) {
		return false
	}
	return true
}

// Neighbors locates a Student among all Students for cyclic navigation.
type Neighbors struct {
	Previous Student `json:"previous"`
	Next     Student `json:"next"`
	Position int     `json:"position"` // 1-based
	Total    int     `json:"total"`
}

func cleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func cleanSection(section string) string {
	return strings.ToUpper(core.CleanString(section))
}
