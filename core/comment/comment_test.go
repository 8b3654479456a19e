package comment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/tests"
)

func errorField(t *testing.T, err error) string {
	t.Helper()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return verr.Fields[0].Field
	}
	t.Fatalf("not a validation error: %v", err)
	return ""
}

func TestService_Create(t *testing.T) {
	c := testutil.NewContainer(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

	tests := []struct {
		name      string
		nc        comment.NewComment
		wantField string
		want      comment.Comment
	}{
		{name: "unknown student", nc: comment.NewComment{StudentID: "lol", Content: "Works hard in class."}, wantField: "student_id"},
		{name: "too short", nc: comment.NewComment{StudentID: std.ID, Content: "Good."}, wantField: "content"},
		{name: "too long", nc: comment.NewComment{StudentID: std.ID, Content: strings.Repeat("a", 501)}, wantField: "content"},
		{name: "too long, multi-byte", nc: comment.NewComment{StudentID: std.ID, Content: strings.Repeat("é", 501)}, wantField: "content"},
		{
			name: "500 characters",
			nc:   comment.NewComment{StudentID: std.ID, Content: strings.Repeat("a", 500)},
			want: comment.Comment{StudentID: std.ID, Content: strings.Repeat("a", 500), Tone: "positive", Period: 1, Tags: []string{}},
		},
		{
			name: "500 multi-byte characters",
			nc:   comment.NewComment{StudentID: std.ID, Content: strings.Repeat("é", 500)},
			want: comment.Comment{StudentID: std.ID, Content: strings.Repeat("é", 500), Tone: "positive", Period: 1, Tags: []string{}},
		},
		{name: "bad tone", nc: comment.NewComment{StudentID: std.ID, Content: "Works hard in class.", Tone: "angry"}, wantField: "tone"},
		{name: "bad period", nc: comment.NewComment{StudentID: std.ID, Content: "Works hard in class.", Period: 3}, wantField: "period"},
		{
			name: "defaults",
			nc:   comment.NewComment{StudentID: " " + std.ID + " ", Content: "  [Student Name] works hard in class. "},
			want: comment.Comment{StudentID: std.ID, Content: "Amani works hard in class.", Tone: "positive", Period: 1, Tags: []string{}},
		},
		{
			name: "all fields",
			nc: comment.NewComment{
				StudentID: std.ID,
				Content:   "Needs to focus more during lessons.",
				Tone:      " NEGATIVE ",
				Period:    2,
				Tags:      []string{"Focus", " focus", "", "homework"},
			},
			want: comment.Comment{StudentID: std.ID, Content: "Needs to focus more during lessons.", Tone: "negative", Period: 2, Tags: []string{"focus", "homework"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmt, err := c.CommentSvc.Create(ctx, tt.nc)
			if tt.wantField != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantField, errorField(t, err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cmt.ID)
			tt.want.ID = cmt.ID
			tt.want.CreatedAt = cmt.CreatedAt
			tt.want.UpdatedAt = cmt.UpdatedAt
			assert.Equal(t, tt.want, cmt)
		})
	}
}

func TestService_Update(t *testing.T) {
	c := testutil.NewContainer(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	orig := testutil.CreateComment(t, c.Store.Comments, std.ID, "Amani works hard in class.", "neutral", 2, []string{"effort"})

	got, err := c.CommentSvc.Update(ctx, orig, comment.UpdateComment{Content: "Well done [Student Name], great term!"})
	require.NoError(t, err)
	assert.Equal(t, "Well done Amani, great term!", got.Content)
	assert.Equal(t, "neutral", got.Tone)
	assert.Equal(t, 2, got.Period)
	assert.Equal(t, []string{"effort"}, got.Tags)

	got, err = c.CommentSvc.Update(ctx, got, comment.UpdateComment{Content: got.Content, Tone: "positive", Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "positive", got.Tone)
	assert.Empty(t, got.Tags)

	stored, err := c.CommentSvc.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Content, stored.Content)

	_, err = c.CommentSvc.Update(ctx, got, comment.UpdateComment{Content: "  "})
	assert.Equal(t, "content", errorField(t, err))

	_, err = c.CommentSvc.Update(ctx, comment.Comment{ID: "lol", StudentID: std.ID, Tone: "positive", Period: 1}, comment.UpdateComment{Content: "Works hard in class."})
	assert.Equal(t, comment.ErrNotFound, errors.Cause(err))
}

func TestService_Query(t *testing.T) {
	c := testutil.NewContainer(t)
	ctx := context.Background()
	now := time.Now().UTC()
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	bea := testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 5, "A")
	c1 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", "positive", 1, nil, now.Add(-3*time.Hour))
	c2 := testutil.CreateComment(t, c.Store.Comments, bea.ID, "Bea needs to focus more.", "negative", 1, nil, now.Add(-2*time.Hour))
	c3 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani improved a lot this term.", "positive", 2, nil, now.Add(-time.Hour))

	tests := []struct {
		name   string
		filter comment.QueryFilter
		want   []comment.Comment
	}{
		{name: "all, newest first", want: []comment.Comment{c3, c2, c1}},
		{name: "by period", filter: comment.QueryFilter{Period: 1}, want: []comment.Comment{c2, c1}},
		{name: "by tone", filter: comment.QueryFilter{Tone: "POSITIVE"}, want: []comment.Comment{c3, c1}},
		{name: "by student", filter: comment.QueryFilter{StudentID: bea.ID}, want: []comment.Comment{c2}},
		{name: "no match", filter: comment.QueryFilter{Tone: "neutral"}, want: []comment.Comment{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CommentSvc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, ids(tt.want), ids(got))
		})
	}

	// storage order: the first one is the current comment
	got, err := c.CommentSvc.ByStudent(ctx, amani.ID)
	require.NoError(t, err)
	assert.Equal(t, ids([]comment.Comment{c1, c3}), ids(got))

	require.NoError(t, c.CommentSvc.Delete(ctx, c1.ID))
	require.NoError(t, c.CommentSvc.DeleteByStudent(ctx, bea.ID))
	got, err = c.CommentSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids([]comment.Comment{c3}), ids(got))

	_, err = c.CommentSvc.GetByID(ctx, c1.ID)
	assert.Equal(t, comment.ErrNotFound, errors.Cause(err))
}

func ids(comments []comment.Comment) []string {
	res := make([]string, 0, len(comments))
	for _, c := range comments {
		res = append(res, c.ID)
	}
	return res
}

func TestClipboardText(t *testing.T) {
	std := student.Student{Name: "Amani Diallo", Grade: 6, Section: "D"}
	cmt := comment.Comment{Content: "Amani works hard in class.", Period: 2}
	assert.Equal(t, "Amani Diallo (6-D) - Period 2\n\nAmani works hard in class.", comment.ClipboardText(std, cmt))
}

func TestToneHelpers(t *testing.T) {
	assert.Equal(t, "Negative", comment.ToneLabel(comment.ToneNegative))
	assert.Equal(t, "bg-green-500", comment.ToneColor(comment.TonePositive))
	assert.Equal(t, "lol", comment.ToneLabel("lol"))
	assert.Equal(t, "bg-gray-500", comment.ToneColor("lol"))
	assert.True(t, comment.IsTone("neutral"))
	assert.False(t, comment.IsTone(""))
}
