package student

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrStudentExists = errors.New("a student with this name already exists in this class")
	ErrNoneAdded     = errors.New("no student was added")

	reasonInvalid   = "invalid name"
	reasonDuplicate = "already exists"
)

type (
	// Check inspects the stored students before a write. It runs under the repository's write lock.
	Check func(existing []Student) error

	Repository interface {
		// AddStudents appends the students returned by build, which sees the stored ones.
		AddStudents(ctx context.Context, build func(existing []Student) ([]Student, error)) error
		// QueryAllStudents returns students in storage (insertion) order.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// UpdateStudent replaces the stored student once check (when not nil) passes.
		UpdateStudent(ctx context.Context, std Student, check Check) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	// CommentCleaner removes the comments of deleted students.
	CommentCleaner interface {
		DeleteCommentsByStudentID(ctx context.Context, studentIDs ...string) error
	}

	Service struct {
		repo     Repository
		comments CommentCleaner
		validate *validator.Validate
	}
)

// NowFunc is mocked in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

func NewService(repo Repository, comments CommentCleaner, validate *validator.Validate) *Service {
	return &Service{repo: repo, comments: comments, validate: validate}
}

// uniqueIn returns a Check rejecting a classmate with the same name in students, except the excluded ones.
func uniqueIn(name string, grade int, section string, excluded ...Student) Check {
	return func(students []Student) error {
		if findClassmate(students, name, grade, section, excluded...) {
			return core.NewValidationError(ErrStudentExists, core.FieldError{Field: "name", Error: ErrStudentExists.Error()})
		}
		return nil
	}
}

func findClassmate(students []Student, name string, grade int, section string, excluded ...Student) bool {
outer:
	for _, s := range students {
		for _, ex := range excluded {
			if s.ID == ex.ID {
				continue outer
			}
		}
		if s.sameClassmate(name, grade, section) {
			return true
		}
	}
	return false
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	now := NowFunc()
	std := Student{
		ID:        uuid.NewString(),
		Name:      ns.Name,
		Grade:     ns.Grade,
		Section:   ns.Section,
		CreatedAt: now,
		UpdatedAt: now,
	}
	unique := uniqueIn(std.Name, std.Grade, std.Section)
	err := svc.repo.AddStudents(ctx, func(existing []Student) ([]Student, error) {
		if err := unique(existing); err != nil {
			return nil, err
		}
		return []Student{std}, nil
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

// BulkCreate adds one student per line of bs.Names. Invalid and duplicate names are skipped.
func (svc *Service) BulkCreate(ctx context.Context, bs BulkNewStudents) (BulkResult, error) {
	res := BulkResult{Added: []Student{}, Skipped: []Skipped{}}
	if err := bs.Validate(svc.validate); err != nil {
		return res, err
	}

	now := NowFunc()
	names := bs.Lines()
	err := svc.repo.AddStudents(ctx, func(existing []Student) ([]Student, error) {
		res = BulkResult{Added: []Student{}, Skipped: []Skipped{}}
		for _, name := range names {
			ns := NewStudent{Name: name, Grade: bs.Grade, Section: bs.Section}
			if err := svc.validate.Struct(ns); err != nil {
				res.Skipped = append(res.Skipped, Skipped{Name: name, Reason: reasonInvalid})
				continue
			}
			if findClassmate(existing, name, bs.Grade, bs.Section) || findClassmate(res.Added, name, bs.Grade, bs.Section) {
				res.Skipped = append(res.Skipped, Skipped{Name: name, Reason: reasonDuplicate})
				continue
			}
			res.Added = append(res.Added, Student{
				ID:        uuid.NewString(),
				Name:      name,
				Grade:     bs.Grade,
				Section:   bs.Section,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if len(res.Added) == 0 {
			return nil, core.NewValidationError(ErrNoneAdded, core.FieldError{Field: "names", Error: ErrNoneAdded.Error()})
		}
		return res.Added, nil
	})
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return res, err
		}
		return BulkResult{}, errors.Wrap(err, "creating students")
	}
	return res, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

// Query returns the students matching filter, in storage order unless orderings are given.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	filter.Clean()

	res := students
	if !filter.IsEmpty() {
		res = make([]Student, 0, len(students))
		for _, s := range students {
			if filter.Match(s) {
				res = append(res, s)
			}
		}
	}
	sortStudents(res, orderings)
	return res, nil
}

// sortStudents stable-sorts students by orderings. Unknown fields are ignored.
func sortStudents(students []Student, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		for _, ord := range orderings {
			var cmp int
			switch ord.Field {
			case "name":
				cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			case "grade":
				cmp = a.Grade - b.Grade
			case "section":
				cmp = strings.Compare(a.Section, b.Section)
			case "created_at":
				cmp = a.CreatedAt.Compare(b.CreatedAt)
			}
			if cmp != 0 {
				if ord.Ascending {
					return cmp < 0
				}
				return cmp > 0
			}
		}
		return false
	})
}

// Recent returns at most n students, most recently created first.
func (svc *Service) Recent(ctx context.Context, n int) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})
	if n >= 0 && len(students) > n {
		students = students[:n]
	}
	return students, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, core.CleanString(id))
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	if err := us.Validate(orig, svc.validate); err != nil {
		return Student{}, err
	}
	std := orig
	std.Name = us.Name
	std.Grade = us.Grade
	std.Section = us.Section
	std.UpdatedAt = NowFunc()
	return svc.repo.UpdateStudent(ctx, std, uniqueIn(std.Name, std.Grade, std.Section, orig))
}

// Delete removes the students and all their comments.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := svc.repo.DeleteStudentsByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if err := svc.comments.DeleteCommentsByStudentID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting student comments")
	}
	return nil
}

// Neighbors returns the previous and next students of id in storage order, wrapping around.
func (svc *Service) Neighbors(ctx context.Context, id string) (Neighbors, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return Neighbors{}, err
	}
	idx := -1
	for i, s := range students {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Neighbors{}, ErrNotFound
	}

	total := len(students)
	return Neighbors{
		Previous: students[(idx-1+total)%total],
		Next:     students[(idx+1)%total],
		Position: idx + 1,
		Total:    total,
	}, nil
}

// ClipboardText formats the student for copying, followed by their current comment if any.
func ClipboardText(std Student, comment string) string {
	var b strings.Builder
	b.WriteString(std.Name + " (" + std.Label() + ")")
	if comment != "" {
		b.WriteString("\n\nComment:\n" + comment)
	}
	return b.String()
}
