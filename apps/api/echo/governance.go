package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/governance"
)

type governanceApi struct {
	svc   *governance.Service
	audit audit.Recorder
}

func registerGovernanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *governance.Service, rec audit.Recorder) {
	api := governanceApi{svc: svc, audit: rec}

	gg := g.Group("/governance", jwt)
	gg.GET("/rules", api.retrieveRules)
	gg.PUT("/rules", api.updateRules, adminMiddleware())
}

type RulesRequest struct {
	DueSoonThresholdDays int `json:"due_soon_threshold_days"`
}

func (api *governanceApi) retrieveRules(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Rules())
}

func (api *governanceApi) updateRules(ctx echo.Context) error {
	var data RulesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RulesRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	rules, err := api.svc.SetThresholdDays(data.DueSoonThresholdDays)
	if err != nil {
		return errors.Wrap(err, "updating governance rules")
	}
	api.audit.Record(claims.UserID(), audit.ActionConfigured, audit.KindGovernance, "rules",
		"due_soon_threshold_days="+strconv.Itoa(rules.DueSoonThresholdDays))

	return ctx.JSON(http.StatusOK, rules)
}
