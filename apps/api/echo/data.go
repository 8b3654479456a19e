package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core/backup"
	"github.com/trezcool/reportcard/core/dashboard"
)

type dataApi struct {
	dashboardSvc *dashboard.Service
	backupSvc    *backup.Service
}

func registerDataAPI(g *echo.Group, dashboardSvc *dashboard.Service, backupSvc *backup.Service) {
	api := dataApi{dashboardSvc: dashboardSvc, backupSvc: backupSvc}

	g.GET("/stats", api.stats)
	g.GET("/export", api.export)
	g.POST("/import", api.importData)
	g.POST("/backup", api.backup)
	g.DELETE("/data", api.clear)
}

// Handlers

func (api *dataApi) stats(ctx echo.Context) error {
	st, err := api.dashboardSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *dataApi) export(ctx echo.Context) error {
	data, err := api.backupSvc.Export(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "exporting data")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", data.Filename()))
	return ctx.JSON(http.StatusOK, data)
}

func (api *dataApi) importData(ctx echo.Context) error {
	var data backup.Data
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to backup.Data")
	}
	if err := api.backupSvc.Import(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "importing data")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Data imported."})
}

func (api *dataApi) backup(ctx echo.Context) error {
	data, err := api.backupSvc.Backup(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "backing up data")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *dataApi) clear(ctx echo.Context) error {
	if err := api.backupSvc.Clear(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing data")
	}
	return ctx.NoContent(http.StatusNoContent)
}
