package echoapi

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/dashboard"
	"github.com/trezcool/reportcard/core/settings"
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/core/templates"
	appfs "github.com/trezcool/reportcard/fs"
)

var (
	viewsDir   = "views"
	viewLayout = "_layout.gohtml"
	viewPages  = []string{"dashboard", "students", "comments", "templates"}

	viewFuncs = template.FuncMap{
		"toneLabel": comment.ToneLabel,
		"toneColor": comment.ToneColor,
	}
)

// viewRenderer renders the embedded html pages, each within the shared layout.
type viewRenderer struct {
	appName string
	pages   map[string]*template.Template
}

var _ echo.Renderer = (*viewRenderer)(nil)

func newViewRenderer(appName string) *viewRenderer {
	r := &viewRenderer{appName: appName, pages: make(map[string]*template.Template, len(viewPages))}
	for _, page := range viewPages {
		r.pages[page] = template.Must(
			template.New(viewLayout).Funcs(viewFuncs).ParseFS(
				appfs.FS,
				path.Join(viewsDir, viewLayout),
				path.Join(viewsDir, page+".gohtml"),
			),
		)
	}
	return r
}

// viewData is passed to every page.
type viewData struct {
	AppName  string
	Title    string
	Page     string
	Settings settings.Settings
	Data     interface{}
}

func (r *viewRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown view %q", name)
	}
	if vd, ok := data.(*viewData); ok {
		vd.AppName = r.appName
		vd.Page = name
	}
	return tmpl.ExecuteTemplate(w, viewLayout, data)
}

type (
	dashboardView struct {
		Stats  dashboard.Stats
		Recent []student.Student
	}

	studentCard struct {
		Student    student.Student
		HasComment bool
	}

	studentsView struct {
		Grades []int
		Filter student.QueryFilter
		Cards  []studentCard
	}

	commentCard struct {
		Comment comment.Comment
		Student student.Student
	}

	commentsView struct {
		Periods []int
		Tones   []string
		Filter  comment.QueryFilter
		Cards   []commentCard
	}

	templatesView struct {
		Tones      []string
		Tone       string
		Categories []templates.CategorizedTags
		Templates  []templates.Suggestion
	}
)

type viewsHandler struct {
	deps ServerDeps
}

func registerViews(e *echo.Echo, deps ServerDeps) {
	h := viewsHandler{deps: deps}
	e.GET("/", h.dashboard)
	e.GET("/students", h.students)
	e.GET("/comments", h.comments)
	e.GET("/templates", h.templates)
}

func (h *viewsHandler) render(ctx echo.Context, page, title string, data interface{}) error {
	s, err := h.deps.SettingsSvc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.Render(http.StatusOK, page, &viewData{Title: title, Settings: s, Data: data})
}

// studentsByID indexes every student for comment cards.
func (h *viewsHandler) studentsByID(ctx context.Context) (map[string]student.Student, error) {
	students, err := h.deps.StudentSvc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]student.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	return byID, nil
}

func (h *viewsHandler) dashboard(ctx echo.Context) error {
	st, err := h.deps.DashboardSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	recent, err := h.deps.StudentSvc.Recent(ctx.Request().Context(), recentStudents)
	if err != nil {
		return errors.Wrap(err, "querying recent students")
	}
	return h.render(ctx, "dashboard", "Dashboard", dashboardView{Stats: st, Recent: recent})
}

func (h *viewsHandler) students(ctx echo.Context) error {
	var filter student.QueryFilter
	_ = ctx.Bind(&filter)
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := h.deps.StudentSvc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	comments, err := h.deps.CommentSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	commented := make(map[string]bool)
	for _, c := range comments {
		if !c.IsBlank() {
			commented[c.StudentID] = true
		}
	}

	view := studentsView{Grades: student.Grades, Filter: filter, Cards: make([]studentCard, 0, len(students))}
	for _, s := range students {
		view.Cards = append(view.Cards, studentCard{Student: s, HasComment: commented[s.ID]})
	}
	return h.render(ctx, "students", "Students", view)
}

func (h *viewsHandler) comments(ctx echo.Context) error {
	var filter comment.QueryFilter
	_ = ctx.Bind(&filter)
	filter.Clean()

	comments, err := h.deps.CommentSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	students, err := h.studentsByID(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	view := commentsView{Periods: comment.Periods, Tones: comment.Tones, Filter: filter, Cards: make([]commentCard, 0, len(comments))}
	for _, c := range comments {
		view.Cards = append(view.Cards, commentCard{Comment: c, Student: students[c.StudentID]})
	}
	return h.render(ctx, "comments", "Comments", view)
}

func (h *viewsHandler) templates(ctx echo.Context) error {
	tone := core.CleanString(ctx.QueryParam("tone"), true /* lower */)
	return h.render(ctx, "templates", "Templates", templatesView{
		Tones:      comment.Tones,
		Tone:       tone,
		Categories: h.deps.TemplateSvc.CategorizedTags(),
		Templates:  h.deps.TemplateSvc.List(tone),
	})
}
