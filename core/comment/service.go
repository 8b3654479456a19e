package comment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("comment not found")
)

type (
	Repository interface {
		CreateComment(ctx context.Context, cmt Comment) error
		// QueryAllComments returns comments in storage (insertion) order.
		QueryAllComments(ctx context.Context) ([]Comment, error)
		GetCommentByID(ctx context.Context, id string) (Comment, error)
		UpdateComment(ctx context.Context, cmt Comment) (Comment, error)
		DeleteCommentsByID(ctx context.Context, ids ...string) error
		DeleteCommentsByStudentID(ctx context.Context, studentIDs ...string) error
	}

	StudentGetter interface {
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentGetter
		validate *validator.Validate
	}
)

var _ StudentGetter = (*student.Service)(nil)

// NowFunc is mocked in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

func NewService(repo Repository, students StudentGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, validate: validate}
}

func (svc *Service) getStudent(ctx context.Context, id string) (student.Student, error) {
	std, err := svc.students.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return std, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return std, err
	}
	return std, nil
}

func (svc *Service) Create(ctx context.Context, nc NewComment) (Comment, error) {
	std, err := svc.getStudent(ctx, core.CleanString(nc.StudentID))
	if err != nil {
		return Comment{}, err
	}
	nc.Clean(std.Name)
	if err := nc.Validate(svc.validate); err != nil {
		return Comment{}, err
	}

	now := NowFunc()
	cmt := Comment{
		ID:        uuid.NewString(),
		StudentID: std.ID,
		Content:   nc.Content,
		Tone:      nc.Tone,
		Period:    nc.Period,
		Tags:      nc.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.repo.CreateComment(ctx, cmt); err != nil {
		return Comment{}, errors.Wrap(err, "creating comment")
	}
	return cmt, nil
}

func (svc *Service) Update(ctx context.Context, orig Comment, uc UpdateComment) (Comment, error) {
	var name string
	if std, err := svc.students.GetByID(ctx, orig.StudentID); err == nil {
		name = std.Name
	}
	uc.Clean(orig, name)
	if err := uc.Validate(svc.validate); err != nil {
		return Comment{}, err
	}

	cmt := orig
	cmt.Content = uc.Content
	cmt.Tone = uc.Tone
	cmt.Period = uc.Period
	cmt.Tags = uc.Tags
	cmt.UpdatedAt = NowFunc()
	return svc.repo.UpdateComment(ctx, cmt)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Comment, error) {
	return svc.repo.QueryAllComments(ctx)
}

// Query returns the comments matching filter, newest first.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Comment, error) {
	comments, err := svc.repo.QueryAllComments(ctx)
	if err != nil {
		return nil, err
	}
	filter.Clean()

	res := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if filter.Match(c) {
			res = append(res, c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// ByStudent returns the comments of a student in storage order.
// The first one is the student's current comment.
func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Comment, error) {
	comments, err := svc.repo.QueryAllComments(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]Comment, 0)
	for _, c := range comments {
		if c.StudentID == studentID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Comment, error) {
	return svc.repo.GetCommentByID(ctx, core.CleanString(id))
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteCommentsByID(ctx, ids...)
}

func (svc *Service) DeleteByStudent(ctx context.Context, studentIDs ...string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	return svc.repo.DeleteCommentsByStudentID(ctx, studentIDs...)
}

// ClipboardText formats a comment for copying, headed by its student and period.
func ClipboardText(std student.Student, cmt Comment) string {
	return fmt.Sprintf("%s (%s) - Period %d\n\n%s", std.Name, std.Label(), cmt.Period, cmt.Content)
}
