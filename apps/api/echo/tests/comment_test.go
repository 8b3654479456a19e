package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/reportcard/apps/api/echo"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/tests"
)

func TestCommentAPI_create(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

	tests := []httpTest{
		{
			name:     "unknown student",
			body:     []byte(`{"student_id":"lol","content":"Works hard in class."}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"student_id":"student not found"}`),
		},
		{
			name:     "invalid",
			body:     marshallObj(t, comment.NewComment{StudentID: amani.ID, Content: "Short.", Tone: "angry", Period: 3}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"content":"content must be at least 10 characters in length","tone":"tone must be one of positive, neutral or negative","period":"period must be 1 or 2"}`),
		},
		{
			name:     "created",
			body:     marshallObj(t, comment.NewComment{StudentID: amani.ID, Content: "[Student Name] works hard in class.", Tags: []string{"Effort"}}),
			wantCode: http.StatusCreated,
			extra: comment.Comment{
				StudentID: amani.ID,
				Content:   "Amani works hard in class.",
				Tone:      comment.TonePositive,
				Period:    1,
				Tags:      []string{"effort"},
			},
		},
	}
	for _, tt := range tests {
		tt.method, tt.path = http.MethodPost, "/v1/comments"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt)
			checkCodeAndData(t, tt, rec)

			if want, ok := tt.extra.(comment.Comment); ok {
				var got comment.Comment
				unmarshall(t, rec, &got)
				assert.NotEmpty(t, got.ID)
				want.ID, want.CreatedAt, want.UpdatedAt = got.ID, got.CreatedAt, got.UpdatedAt
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCommentAPI_query(t *testing.T) {
	app, c := setup(t)
	now := time.Now().UTC()
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	bea := testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 5, "A")
	c1 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", comment.TonePositive, 1, []string{}, now.Add(-2*time.Hour))
	c2 := testutil.CreateComment(t, c.Store.Comments, bea.ID, "Bea needs to focus more.", comment.ToneNegative, 2, []string{}, now.Add(-time.Hour))

	tests := []httpTest{
		{name: "all", path: "/v1/comments", wantData: marshallObj(t, []comment.Comment{c2, c1})},
		{name: "by period", path: "/v1/comments?period=1", wantData: marshallObj(t, []comment.Comment{c1})},
		{name: "by tone", path: "/v1/comments?tone=negative", wantData: marshallObj(t, []comment.Comment{c2})},
		{name: "by student", path: "/v1/comments?student_id=" + amani.ID, wantData: marshallObj(t, []comment.Comment{c1})},
		{name: "no match", path: "/v1/comments?tone=neutral", wantData: []byte(`[]`)},
		{name: "retrieve", path: "/v1/comments/" + c1.ID, wantData: marshallObj(t, c1)},
		{
			name:     "clipboard",
			path:     "/v1/comments/" + c2.ID + "/clipboard",
			wantData: marshallObj(t, ClipboardResponse{Text: "Bea Ncube (5-A) - Period 2\n\nBea needs to focus more."}),
		},
		{name: "not found", path: "/v1/comments/lol", wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))
		})
	}
}

func TestCommentAPI_update(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	cmt := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", comment.ToneNeutral, 2, []string{"effort"})

	tests := []httpTest{
		{
			name:     "blank content",
			body:     []byte(`{"content":"  "}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"content":"this field is required"}`),
		},
		{
			name:     "keeps tone, period and tags",
			body:     []byte(`{"content":"Well done [Student Name], great term!"}`),
			wantCode: http.StatusOK,
			extra:    comment.Comment{Content: "Well done Amani, great term!", Tone: comment.ToneNeutral, Period: 2, Tags: []string{"effort"}},
		},
		{
			name:     "all fields",
			body:     []byte(`{"content":"Amani must focus more.","tone":"negative","period":1,"tags":[]}`),
			wantCode: http.StatusOK,
			extra:    comment.Comment{Content: "Amani must focus more.", Tone: comment.ToneNegative, Period: 1, Tags: []string{}},
		},
	}
	for _, tt := range tests {
		tt.method, tt.path = http.MethodPut, "/v1/comments/"+cmt.ID

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))

			if want, ok := tt.extra.(comment.Comment); ok {
				got, err := c.CommentSvc.GetByID(context.Background(), cmt.ID)
				require.NoError(t, err)
				assert.Equal(t, want.Content, got.Content)
				assert.Equal(t, want.Tone, got.Tone)
				assert.Equal(t, want.Period, got.Period)
				assert.Equal(t, want.Tags, got.Tags)
			}
		})
	}
}

func TestCommentAPI_destroy(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	c1 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", comment.TonePositive, 1, nil)
	c2 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani improved a lot.", comment.TonePositive, 2, nil)
	c3 := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani is kind to others.", comment.TonePositive, 2, nil)

	tests := []httpTest{
		{name: "not found", path: "/v1/comments/lol", wantCode: http.StatusNotFound},
		{name: "one", path: "/v1/comments/" + c1.ID, wantCode: http.StatusNoContent},
		{name: "multiple", path: "/v1/comments?id=" + c2.ID + "&id=" + c3.ID, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			checkCode(t, tt, serve(app, tt))
		})
	}

	comments, err := c.CommentSvc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentAPI_stripName(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

	tests := []httpTest{
		{
			name:     "invalid",
			body:     []byte(`{"content":" "}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"content":"this field cannot be blank","student_id":"this field is required"}`),
		},
		{
			name:     "unknown student",
			body:     []byte(`{"content":"Amani works hard.","student_id":"lol"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error":"student not found"}`),
		},
		{
			name:     "stripped",
			body:     marshallObj(t, StripNameRequest{Content: "Amani, you did great work.", StudentID: amani.ID}),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, StripNameResponse{Content: "You did great work."}),
		},
	}
	for _, tt := range tests {
		tt.method, tt.path = http.MethodPost, "/v1/comments/strip-name"

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))
		})
	}
}
