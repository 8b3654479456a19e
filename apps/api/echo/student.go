package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

const recentStudents = 5

type studentApi struct {
	svc        *student.Service
	commentSvc *comment.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, commentSvc *comment.Service) {
	api := studentApi{svc: svc, commentSvc: commentSvc}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.POST("/bulk", api.bulkCreate)
	sg.GET("", api.query)
	sg.GET("/recent", api.recent)
	sg.DELETE("", api.destroyMultiple)

	// detail endpoints
	dg := sg.Group("/:id", ctxStudentMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/comments", api.comments)
	dg.GET("/neighbors", api.neighbors)
	dg.GET("/clipboard", api.clipboard)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) bulkCreate(ctx echo.Context) error {
	var data student.BulkNewStudents
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkNewStudents")
	}

	res, err := api.svc.BulkCreate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "bulk creating students")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) recent(ctx echo.Context) error {
	students, err := api.svc.Recent(ctx.Request().Context(), recentStudents)
	if err != nil {
		return errors.Wrap(err, "querying recent students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err = api.svc.Update(ctx.Request().Context(), std, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) comments(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	comments, err := api.commentSvc.ByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "querying student comments")
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *studentApi) neighbors(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	nb, err := api.svc.Neighbors(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "finding student neighbors")
	}
	return ctx.JSON(http.StatusOK, nb)
}

func (api *studentApi) clipboard(ctx echo.Context) error {
	std, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	comments, err := api.commentSvc.ByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "querying student comments")
	}
	var current string
	if len(comments) > 0 {
		current = comments[0].Content
	}
	return ctx.JSON(http.StatusOK, ClipboardResponse{Text: student.ClipboardText(std, current)})
}
