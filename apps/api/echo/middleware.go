package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/student"
)

const objectKey = "object"

// ctxStudentMiddleware loads the student of the `:id` path param into the context.
func ctxStudentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			std, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by ID")
			}
			ctx.Set(objectKey, std)
			return next(ctx)
		}
	}
}

// ctxCommentMiddleware loads the comment of the `:id` path param into the context.
func ctxCommentMiddleware(svc *comment.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cmt, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == comment.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding comment by ID")
			}
			ctx.Set(objectKey, cmt)
			return next(ctx)
		}
	}
}

func ctxStudent(ctx echo.Context) (student.Student, error) {
	std, ok := ctx.Get(objectKey).(student.Student)
	if !ok {
		return std, errors.Wrap(errObjectNotFoundInCtx, "retrieving student from context")
	}
	return std, nil
}

func ctxComment(ctx echo.Context) (comment.Comment, error) {
	cmt, ok := ctx.Get(objectKey).(comment.Comment)
	if !ok {
		return cmt, errors.Wrap(errObjectNotFoundInCtx, "retrieving comment from context")
	}
	return cmt, nil
}
