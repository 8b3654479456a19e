package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/reportcard/apps/di"
	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/storage/kv/inmem"
	"github.com/trezcool/reportcard/storage/repos"
)

// NewContainer returns the services of a fresh in-memory store, closed at the end of the test.
func NewContainer(t *testing.T) *di.Container {
	conf := core.NewTestConfig()
	logger := di.NewLogger(conf, "TEST : ")
	c, err := di.NewWithStore(context.Background(), conf, logger, inmem.NewStore(conf.Storage.Prefix))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func CreateStudent(
	t *testing.T,
	repo *repos.Students,
	name string,
	grade int,
	section string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std := student.Student{
		ID:        uuid.NewString(),
		Name:      name,
		Grade:     grade,
		Section:   section,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := repo.CreateStudents(context.Background(), std); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateComment(
	t *testing.T,
	repo comment.Repository,
	studentID, content, tone string,
	period int,
	tags []string,
	createdAt ...time.Time,
) comment.Comment {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if tags == nil {
		tags = []string{}
	}
	cmt := comment.Comment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Content:   content,
		Tone:      tone,
		Period:    period,
		Tags:      tags,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := repo.CreateComment(context.Background(), cmt); err != nil {
		t.Fatalf("CreateComment() failed: %v", err)
	}
	return cmt
}
