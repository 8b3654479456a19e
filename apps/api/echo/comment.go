package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

type commentApi struct {
	svc        *comment.Service
	studentSvc *student.Service
	validate   *validator.Validate
}

func registerCommentAPI(g *echo.Group, svc *comment.Service, studentSvc *student.Service, validate *validator.Validate) {
	api := commentApi{svc: svc, studentSvc: studentSvc, validate: validate}

	cg := g.Group("/comments")
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple)
	cg.POST("/strip-name", api.stripName)

	// detail endpoints
	dg := cg.Group("/:id", ctxCommentMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/clipboard", api.clipboard)
}

type StripNameRequest struct {
	Content   string `json:"content" validate:"notblank"`
	StudentID string `json:"student_id" validate:"required"`
}

type StripNameResponse struct {
	Content string `json:"content"`
}

func (sr *StripNameRequest) Validate(validate *validator.Validate) error {
	sr.StudentID = core.CleanString(sr.StudentID)
	return validate.Struct(sr)
}

// Handlers

func (api *commentApi) create(ctx echo.Context) error {
	var data comment.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}

	cmt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *commentApi) query(ctx echo.Context) error {
	var filter comment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []comment.Comment{})
	}

	comments, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *commentApi) stripName(ctx echo.Context) error {
	var data StripNameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StripNameRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), data.StudentID)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, StripNameResponse{Content: comment.StripName(data.Content, std.Name)})
}

func (api *commentApi) retrieve(ctx echo.Context) error {
	cmt, err := ctxComment(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cmt)
}

func (api *commentApi) update(ctx echo.Context) error {
	cmt, err := ctxComment(ctx)
	if err != nil {
		return err
	}

	var data comment.UpdateComment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateComment")
	}

	cmt, err = api.svc.Update(ctx.Request().Context(), cmt, data)
	if err != nil {
		return errors.Wrap(err, "updating comment")
	}
	return ctx.JSON(http.StatusOK, cmt)
}

func (api *commentApi) destroy(ctx echo.Context) error {
	cmt, err := ctxComment(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), cmt.ID); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *commentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting comments")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *commentApi) clipboard(ctx echo.Context) error {
	cmt, err := ctxComment(ctx)
	if err != nil {
		return err
	}
	std, err := api.studentSvc.GetByID(ctx.Request().Context(), cmt.StudentID)
	if err != nil {
		return errors.Wrap(err, "finding comment student")
	}
	return ctx.JSON(http.StatusOK, ClipboardResponse{Text: comment.ClipboardText(std, cmt)})
}
