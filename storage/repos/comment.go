package repos

import (
	"context"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

type Comments struct {
	col *collection[comment.Comment]
}

var (
	_ comment.Repository     = (*Comments)(nil)
	_ student.CommentCleaner = (*Comments)(nil)
)

func NewComments(kv core.KVStore) *Comments {
	return &Comments{col: &collection[comment.Comment]{kv: kv, key: CommentsKey}}
}

func (repo *Comments) CreateComment(ctx context.Context, cmt comment.Comment) error {
	return repo.col.modify(ctx, func(items []comment.Comment) ([]comment.Comment, error) {
		return append(items, cmt), nil
	})
}

func (repo *Comments) QueryAllComments(ctx context.Context) ([]comment.Comment, error) {
	return repo.col.all(ctx)
}

func (repo *Comments) GetCommentByID(ctx context.Context, id string) (comment.Comment, error) {
	comments, err := repo.col.all(ctx)
	if err != nil {
		return comment.Comment{}, err
	}
	for _, c := range comments {
		if c.ID == id {
			return c, nil
		}
	}
	return comment.Comment{}, comment.ErrNotFound
}

func (repo *Comments) UpdateComment(ctx context.Context, cmt comment.Comment) (comment.Comment, error) {
	err := repo.col.modify(ctx, func(items []comment.Comment) ([]comment.Comment, error) {
		for i := range items {
			if items[i].ID == cmt.ID {
				items[i] = cmt
				return items, nil
			}
		}
		return nil, comment.ErrNotFound
	})
	if err != nil {
		return comment.Comment{}, err
	}
	return cmt, nil
}

func (repo *Comments) DeleteCommentsByID(ctx context.Context, ids ...string) error {
	toDelete := idSet(ids)
	return repo.deleteWhere(ctx, func(c comment.Comment) bool { return toDelete[c.ID] })
}

func (repo *Comments) DeleteCommentsByStudentID(ctx context.Context, studentIDs ...string) error {
	toDelete := idSet(studentIDs)
	return repo.deleteWhere(ctx, func(c comment.Comment) bool { return toDelete[c.StudentID] })
}

func (repo *Comments) deleteWhere(ctx context.Context, match func(c comment.Comment) bool) error {
	return repo.col.modify(ctx, func(items []comment.Comment) ([]comment.Comment, error) {
		kept := items[:0]
		for _, c := range items {
			if !match(c) {
				kept = append(kept, c)
			}
		}
		return kept, nil
	})
}

func (repo *Comments) ReplaceComments(ctx context.Context, comments []comment.Comment) error {
	return repo.col.replace(ctx, comments)
}
