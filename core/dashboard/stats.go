package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

const (
	PopularTagsLimit = 10
	weeklyWindow     = 7 * 24 * time.Hour
)

type (
	StudentLister interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
	}

	CommentLister interface {
		QueryAll(ctx context.Context) ([]comment.Comment, error)
	}

	TemplateCounter interface {
		Count() int
	}
)

type ToneAnalysis struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalStudents     int          `json:"total_students"`
	TotalComments     int          `json:"total_comments"`
	CompletedComments int          `json:"completed_comments"`
	PendingComments   int          `json:"pending_comments"`
	CompletionRate    int          `json:"completion_rate"` // percent
	WeeklyComments    int          `json:"weekly_comments"`
	TotalTemplates    int          `json:"total_templates"`
	ToneAnalysis      ToneAnalysis `json:"tone_analysis"`
	PopularTags       []TagCount   `json:"popular_tags"`
}

// NowFunc is mocked in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

type Service struct {
	students  StudentLister
	comments  CommentLister
	templates TemplateCounter
}

func NewService(students StudentLister, comments CommentLister, templates TemplateCounter) *Service {
	return &Service{students: students, comments: comments, templates: templates}
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	students, err := svc.students.QueryAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}
	comments, err := svc.comments.QueryAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying comments")
	}
	st := Compute(students, comments, NowFunc())
	st.TotalTemplates = svc.templates.Count()
	return st, nil
}

// Compute derives the statistics of students and comments at now.
// A student is completed once they have at least one non-blank comment.
func Compute(students []student.Student, comments []comment.Comment, now time.Time) Stats {
	st := Stats{
		TotalStudents: len(students),
		TotalComments: len(comments),
		PopularTags:   []TagCount{},
	}

	known := make(map[string]bool, len(students))
	for _, s := range students {
		known[s.ID] = true
	}

	completed := make(map[string]bool)
	tagCounts := make(map[string]int)
	since := now.Add(-weeklyWindow)
	for _, c := range comments {
		if !c.IsBlank() && known[c.StudentID] {
			completed[c.StudentID] = true
		}
		if c.CreatedAt.After(since) {
			st.WeeklyComments++
		}
		switch c.Tone {
		case comment.TonePositive:
			st.ToneAnalysis.Positive++
		case comment.ToneNeutral:
			st.ToneAnalysis.Neutral++
		case comment.ToneNegative:
			st.ToneAnalysis.Negative++
		}
		for _, tag := range c.Tags {
			tagCounts[tag]++
		}
	}

	st.CompletedComments = len(completed)
	st.PendingComments = st.TotalStudents - st.CompletedComments
	if st.TotalStudents > 0 {
		st.CompletionRate = int(math.Round(float64(st.CompletedComments) / float64(st.TotalStudents) * 100))
	}

	for tag, n := range tagCounts {
		st.PopularTags = append(st.PopularTags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(st.PopularTags, func(i, j int) bool {
		a, b := st.PopularTags[i], st.PopularTags[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Tag < b.Tag
	})
	if len(st.PopularTags) > PopularTagsLimit {
		st.PopularTags = st.PopularTags[:PopularTagsLimit]
	}
	return st
}
