package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/student"
	"github.com/trezcool/reportcard/core/templates"
)

var studentIDParam = "student_id"

type templateApi struct {
	svc        *templates.Service
	studentSvc *student.Service
}

func registerTemplateAPI(g *echo.Group, svc *templates.Service, studentSvc *student.Service) {
	api := templateApi{svc: svc, studentSvc: studentSvc}

	tg := g.Group("/templates")
	tg.GET("", api.query)
	tg.GET("/suggestions", api.suggest)
	tg.GET("/tags", api.tags)
	tg.GET("/:id", api.retrieve)
}

type TagsResponse struct {
	Tags       []string                    `json:"tags"`
	Categories []templates.CategorizedTags `json:"categories"`
}

type UseTemplateResponse struct {
	templates.Suggestion
	StudentID string `json:"student_id,omitempty"`
}

// queryStudent returns the student of the `student_id` query param, if any.
func (api *templateApi) queryStudent(ctx echo.Context) (*student.Student, error) {
	id := core.CleanString(ctx.QueryParam(studentIDParam))
	if id == "" {
		return nil, nil
	}
	std, err := api.studentSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return nil, errors.Wrap(err, "finding student by ID")
	}
	return &std, nil
}

// Handlers

func (api *templateApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.List(ctx.QueryParam("tone")))
}

func (api *templateApi) suggest(ctx echo.Context) error {
	var filter templates.SuggestFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SuggestFilter")
	}
	std, err := api.queryStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Suggest(filter, std))
}

func (api *templateApi) tags(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, TagsResponse{
		Tags:       api.svc.Tags(),
		Categories: api.svc.CategorizedTags(),
	})
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	tmpl, err := api.svc.Find(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding template")
	}
	std, err := api.queryStudent(ctx)
	if err != nil {
		return err
	}

	res := UseTemplateResponse{Suggestion: tmpl}
	if std != nil {
		if res.Content, err = api.svc.Use(tmpl.ID, *std); err != nil {
			return errors.Wrap(err, "using template")
		}
		res.StudentID = std.ID
	}
	return ctx.JSON(http.StatusOK, res)
}
