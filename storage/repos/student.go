package repos

import (
	"context"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/student"
)

type Students struct {
	col *collection[student.Student]
}

var _ student.Repository = (*Students)(nil)

func NewStudents(kv core.KVStore) *Students {
	return &Students{col: &collection[student.Student]{kv: kv, key: StudentsKey}}
}

// CreateStudents appends students without any check.
func (repo *Students) CreateStudents(ctx context.Context, students ...student.Student) error {
	return repo.AddStudents(ctx, func([]student.Student) ([]student.Student, error) {
		return students, nil
	})
}

func (repo *Students) AddStudents(ctx context.Context, build func(existing []student.Student) ([]student.Student, error)) error {
	return repo.col.modify(ctx, func(items []student.Student) ([]student.Student, error) {
		added, err := build(items)
		if err != nil {
			return nil, err
		}
		return append(items, added...), nil
	})
}

func (repo *Students) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	return repo.col.all(ctx)
}

func (repo *Students) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	students, err := repo.col.all(ctx)
	if err != nil {
		return student.Student{}, err
	}
	for _, s := range students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *Students) UpdateStudent(ctx context.Context, std student.Student, check student.Check) (student.Student, error) {
	err := repo.col.modify(ctx, func(items []student.Student) ([]student.Student, error) {
		if check != nil {
			if err := check(items); err != nil {
				return nil, err
			}
		}
		for i := range items {
			if items[i].ID == std.ID {
				items[i] = std
				return items, nil
			}
		}
		return nil, student.ErrNotFound
	})
	if err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *Students) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	toDelete := idSet(ids)
	return repo.col.modify(ctx, func(items []student.Student) ([]student.Student, error) {
		kept := items[:0]
		for _, s := range items {
			if !toDelete[s.ID] {
				kept = append(kept, s)
			}
		}
		return kept, nil
	})
}

func (repo *Students) ReplaceStudents(ctx context.Context, students []student.Student) error {
	return repo.col.replace(ctx, students)
}
