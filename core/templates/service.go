package templates

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("template not found")
)

// Service serves the read-only template catalog.
type Service struct {
	catalog Catalog
}

func NewService(catalog Catalog) *Service {
	if catalog == nil {
		catalog = make(Catalog)
	}
	return &Service{catalog: catalog}
}

// collect returns the suggestions of the selected grade-terms, in grade-term order.
// A zero grade or term selects all of them.
func (svc *Service) collect(grade, term int) []Suggestion {
	var res []Suggestion
	for _, gt := range AllGradeTerms() {
		if (grade != 0 && gt.Grade != grade) || (term != 0 && gt.Term != term) {
			continue
		}
		for _, t := range svc.catalog[gt] {
			res = append(res, Suggestion{Template: t, Grade: gt.Grade, Term: gt.Term})
		}
	}
	return res
}

// List returns every template, optionally filtered by tone.
func (svc *Service) List(tone string) []Suggestion {
	tone = core.CleanString(tone, true /* lower */)
	res := make([]Suggestion, 0)
	for _, s := range svc.collect(0, 0) {
		if s.HasTone(tone) {
			res = append(res, s)
		}
	}
	return res
}

// Suggest returns templates for filter. Without tags, only the first SuggestionLimit are returned;
// otherwise every template carrying one of the tags.
// When std is set, the grade defaults to theirs and the placeholder is replaced with their first name.
func (svc *Service) Suggest(filter SuggestFilter, std *student.Student) []Suggestion {
	if filter.Grade == 0 && std != nil {
		filter.Grade = std.Grade
	}
	tone := core.CleanString(filter.Tone, true /* lower */)

	res := make([]Suggestion, 0)
	for _, s := range svc.collect(filter.Grade, filter.Term) {
		if !s.HasTone(tone) {
			continue
		}
		if len(filter.Tags) > 0 && !s.HasAnyTag(filter.Tags) {
			continue
		}
		if std != nil {
			s.Content = comment.ApplyName(s.Content, std.Name)
		}
		res = append(res, s)
		if len(filter.Tags) == 0 && len(res) == SuggestionLimit {
			break
		}
	}
	return res
}

func (svc *Service) Find(id string) (Suggestion, error) {
	for _, s := range svc.collect(0, 0) {
		if s.ID == id {
			return s, nil
		}
	}
	return Suggestion{}, ErrNotFound
}

// Use returns the content of template id with the name of std applied.
func (svc *Service) Use(id string, std student.Student) (string, error) {
	s, err := svc.Find(id)
	if err != nil {
		return "", err
	}
	return comment.ApplyName(s.Content, std.Name), nil
}

// Tags returns the sorted unique tags of all templates.
func (svc *Service) Tags() []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, s := range svc.collect(0, 0) {
		for _, tag := range s.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// CategorizedTags groups Tags by category. Empty categories are omitted.
func (svc *Service) CategorizedTags() []CategorizedTags {
	byCategory := make(map[string][]string)
	for _, tag := range svc.Tags() {
		c := Category(tag)
		byCategory[c] = append(byCategory[c], tag)
	}

	names := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		names = append(names, c.name)
	}
	names = append(names, CategoryOther)

	res := make([]CategorizedTags, 0, len(byCategory))
	for _, name := range names {
		if tags, ok := byCategory[name]; ok {
			res = append(res, CategorizedTags{Category: name, Tags: tags})
		}
	}
	return res
}

func (svc *Service) Count() int {
	var n int
	for _, tmpls := range svc.catalog {
		n += len(tmpls)
	}
	return n
}
