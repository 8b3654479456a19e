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
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/tests"
)

var errNotFound = httpErr{Error: "not found"}

func TestStudentAPI_create(t *testing.T) {
	app, c := setup(t)
	testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

	tests := []httpTest{
		{
			name:     "empty",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required","grade":"this field is required","section":"this field is required"}`),
		},
		{
			name:     "invalid class",
			body:     []byte(`{"name":"Bea Ncube","grade":9,"section":"F"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"grade":"grade must be between 5 and 8","section":"section must be one of A, B, C, D or E"}`),
		},
		{
			name:     "duplicate",
			body:     []byte(`{"name":"amani diallo","grade":5,"section":"a"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"a student with this name already exists in this class"}`),
		},
		{
			name:     "created",
			body:     []byte(`{"name":"  Bea  Ncube ","grade":5,"section":"a"}`),
			wantCode: http.StatusCreated,
			extra:    student.Student{Name: "Bea Ncube", Grade: 5, Section: "A"},
		},
	}
	for _, tt := range tests {
		tt.method, tt.path = http.MethodPost, "/v1/students"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt)
			checkCodeAndData(t, tt, rec)

			if want, ok := tt.extra.(student.Student); ok {
				var got student.Student
				unmarshall(t, rec, &got)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, want.Name, got.Name)
				assert.Equal(t, want.Grade, got.Grade)
				assert.Equal(t, want.Section, got.Section)
			}
		})
	}
}

func TestStudentAPI_bulkCreate(t *testing.T) {
	app, c := setup(t)
	testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 6, "C")

	tests := []httpTest{
		{
			name:     "blank names",
			body:     []byte(`{"names":" \n ","grade":6,"section":"C"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"names":"this field cannot be blank"}`),
		},
		{
			name:     "none added",
			body:     []byte(`{"names":"Amani Diallo\nX","grade":6,"section":"C"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"names":"no student was added"}`),
		},
		{
			name:     "some added",
			body:     []byte(`{"names":"Bea Ncube\namani diallo\nChidi Okafor","grade":6,"section":"c"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method, tt.path = http.MethodPost, "/v1/students/bulk"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var got student.BulkResult
				unmarshall(t, rec, &got)
				assert.Len(t, got.Added, 2)
				assert.Equal(t, []student.Skipped{{Name: "amani diallo", Reason: "already exists"}}, got.Skipped)
			}
		})
	}
}

func TestStudentAPI_query(t *testing.T) {
	app, c := setup(t)
	now := time.Now().UTC()
	zola := testutil.CreateStudent(t, c.Store.Students, "Zola Mbeki", 5, "A", now.Add(-3*time.Hour))
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 6, "A", now.Add(-2*time.Hour))
	bea := testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 5, "B", now.Add(-time.Hour))

	tests := []httpTest{
		{name: "all", path: "/v1/students", wantData: marshallObj(t, []student.Student{zola, amani, bea})},
		{name: "trailing slash", path: "/v1/students/", wantData: marshallObj(t, []student.Student{zola, amani, bea})},
		{name: "by grade", path: "/v1/students?grade=5", wantData: marshallObj(t, []student.Student{zola, bea})},
		{name: "by class", path: "/v1/students?grade=5&section=b", wantData: marshallObj(t, []student.Student{bea})},
		{name: "search", path: "/v1/students?search=diallo", wantData: marshallObj(t, []student.Student{amani})},
		{name: "ordered", path: "/v1/students?ordering=-grade,name", wantData: marshallObj(t, []student.Student{amani, bea, zola})},
		{name: "no match", path: "/v1/students?grade=8", wantData: []byte(`[]`)},
		{name: "invalid grade", path: "/v1/students?grade=lol", wantData: []byte(`[]`)},
		{name: "recent", path: "/v1/students/recent", wantData: marshallObj(t, []student.Student{bea, amani, zola})},
	}
	for _, tt := range tests {
		tt.method, tt.wantCode = http.MethodGet, http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))
		})
	}
}

func TestStudentAPI_detail(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	bea := testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 5, "A")
	cmt := testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", comment.TonePositive, 1, []string{})

	tests := []httpTest{
		{name: "not found", path: "/v1/students/lol", wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound)},
		{name: "retrieve", path: "/v1/students/" + amani.ID, wantCode: http.StatusOK, wantData: marshallObj(t, amani)},
		{name: "comments", path: "/v1/students/" + amani.ID + "/comments", wantCode: http.StatusOK, wantData: marshallObj(t, []comment.Comment{cmt})},
		{name: "no comments", path: "/v1/students/" + bea.ID + "/comments", wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name:     "neighbors",
			path:     "/v1/students/" + amani.ID + "/neighbors",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, student.Neighbors{Previous: bea, Next: bea, Position: 1, Total: 2}),
		},
		{
			name:     "clipboard",
			path:     "/v1/students/" + amani.ID + "/clipboard",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, ClipboardResponse{Text: "Amani Diallo (5-A)\n\nComment:\nAmani works hard in class."}),
		},
		{
			name:     "clipboard without comment",
			path:     "/v1/students/" + bea.ID + "/clipboard",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, ClipboardResponse{Text: "Bea Ncube (5-A)"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt))
		})
	}
}

func TestStudentAPI_update(t *testing.T) {
	app, c := setup(t)
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 6, "B")

	tests := []httpTest{
		{name: "not found", path: "/v1/students/lol", body: []byte(`{}`), wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound)},
		{
			name:     "invalid",
			body:     []byte(`{"name":"A"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"name must be at least 2 characters in length"}`),
		},
		{
			name:     "duplicate",
			body:     []byte(`{"name":"Bea Ncube","grade":6,"section":"B"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"a student with this name already exists in this class"}`),
		},
		{
			name:     "partial",
			body:     []byte(`{"section":"c"}`),
			wantCode: http.StatusOK,
			extra:    student.Student{Name: "Amani Diallo", Grade: 5, Section: "C"},
		},
		{
			name:     "full",
			body:     []byte(`{"name":"Amani J. Diallo","grade":7,"section":"D"}`),
			wantCode: http.StatusOK,
			extra:    student.Student{Name: "Amani J. Diallo", Grade: 7, Section: "D"},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		if tt.path == "" {
			tt.path = "/v1/students/" + amani.ID
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt)
			checkCodeAndData(t, tt, rec)

			if want, ok := tt.extra.(student.Student); ok {
				got, err := c.StudentSvc.GetByID(context.Background(), amani.ID)
				require.NoError(t, err)
				assert.Equal(t, want.Name, got.Name)
				assert.Equal(t, want.Grade, got.Grade)
				assert.Equal(t, want.Section, got.Section)
			}
		})
	}
}

func TestStudentAPI_destroy(t *testing.T) {
	app, c := setup(t)
	ctx := context.Background()
	amani := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	bea := testutil.CreateStudent(t, c.Store.Students, "Bea Ncube", 5, "A")
	chidi := testutil.CreateStudent(t, c.Store.Students, "Chidi Okafor", 5, "A")
	zola := testutil.CreateStudent(t, c.Store.Students, "Zola Mbeki", 5, "A")
	testutil.CreateComment(t, c.Store.Comments, amani.ID, "Amani works hard in class.", comment.TonePositive, 1, nil)

	tests := []httpTest{
		{name: "not found", method: http.MethodDelete, path: "/v1/students/lol", wantCode: http.StatusNotFound},
		{name: "one", method: http.MethodDelete, path: "/v1/students/" + amani.ID, wantCode: http.StatusNoContent},
		{name: "none", method: http.MethodDelete, path: "/v1/students", wantCode: http.StatusNoContent},
		{name: "multiple", method: http.MethodDelete, path: "/v1/students?id=" + bea.ID + "&id=" + chidi.ID + "&id=lol", wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCode(t, tt, serve(app, tt))
		})
	}

	students, err := c.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	if assert.Len(t, students, 1) {
		assert.Equal(t, zola.ID, students[0].ID)
	}
	comments, err := c.CommentSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
