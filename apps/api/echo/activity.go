package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uzimahq/uzima/core/audit"
)

type activityApi struct {
	svc *audit.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *audit.Service) {
	api := activityApi{svc: svc}

	ag := g.Group("/activity", jwt)
	ag.GET("", api.query, adminMiddleware())
}

func (api *activityApi) query(ctx echo.Context) error {
	filter := new(audit.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []audit.Entry{})
	}

	entries, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying activity entries")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
