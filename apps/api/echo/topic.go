package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uzimahq/uzima/core/topic"
)

type topicApi struct {
	svc *topic.Service
}

func registerTopicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *topic.Service) {
	api := topicApi{svc: svc}

	g.GET("/dashboard", api.dashboard, jwt)

	tg := g.Group("/topics", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, qualityMiddleware())
	tg.DELETE("", api.destroyMultiple, qualityMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, qualityMiddleware())
	tg.DELETE("/:id", api.destroy, qualityMiddleware())
	tg.POST("/:id/done", api.markDone)
	tg.POST("/:id/measures", api.addMeasure, qualityMiddleware())

	mg := g.Group("/measures", jwt)
	mg.GET("/:id", api.retrieveMeasure)
	mg.PUT("/:id", api.updateMeasure, qualityMiddleware())
	mg.DELETE("/:id", api.destroyMeasure, qualityMiddleware())
	mg.POST("/:id/done", api.markMeasureDone)
}

// Handlers

func (api *topicApi) create(ctx echo.Context) error {
	var data topic.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	view, err := api.svc.Create(claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *topicApi) query(ctx echo.Context) error {
	filter := new(topic.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []topic.View{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	views, err := api.svc.Query(*filter)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	sortViews(views, ordering)
	if views == nil {
		views = []topic.View{}
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *topicApi) retrieve(ctx echo.Context) error {
	view, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding topic by ID")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *topicApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding topic by ID")
	}

	var data topic.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	if err := data.Validate(orig.Topic, api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	view, err := api.svc.Update(claims.UserID(), orig.Topic, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, view)
}

// markDone completes a topic. Quality managers and admins may complete any
// topic; other users only their own.
func (api *topicApi) markDone(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if !(claims.IsQuality || claims.IsAdmin) {
		orig, err := api.svc.GetByID(ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == topic.ErrTopicNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding topic by ID")
		}
		if !orig.OwnerID.Valid || orig.OwnerID.Int != claims.UserID() {
			return errHttpForbidden
		}
	}

	view, err := api.svc.MarkDone(claims.UserID(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing topic")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *topicApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding topic by ID")
	}
	if err := api.svc.Delete(claims.UserID(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *topicApi) destroyMultiple(ctx echo.Context) error {
	var query struct {
		IDs []string `query:"id"`
	}
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding topic IDs")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.svc.Delete(claims.UserID(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting topics")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *topicApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard()
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

// Measures

func (api *topicApi) addMeasure(ctx echo.Context) error {
	var data topic.NewMeasure
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeasure")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	view, err := api.svc.AddMeasure(claims.UserID(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == topic.ErrTopicNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding measure")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *topicApi) retrieveMeasure(ctx echo.Context) error {
	m, err := api.svc.GetMeasureByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMeasureNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding measure by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *topicApi) updateMeasure(ctx echo.Context) error {
	orig, err := api.svc.GetMeasureByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMeasureNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding measure by ID")
	}

	var data topic.UpdateMeasure
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMeasure")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	view, err := api.svc.UpdateMeasure(claims.UserID(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating measure")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *topicApi) markMeasureDone(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if !(claims.IsQuality || claims.IsAdmin) {
		orig, err := api.svc.GetMeasureByID(ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == topic.ErrMeasureNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding measure by ID")
		}
		if !orig.AssigneeID.Valid || orig.AssigneeID.Int != claims.UserID() {
			return errHttpForbidden
		}
	}

	view, err := api.svc.MarkMeasureDone(claims.UserID(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == topic.ErrMeasureNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing measure")
	}
	return ctx.JSON(http.StatusOK, view)
}

func sortViews(views []topic.View, ordering *Ordering) {
	ord, ok := ordering.First()
	if !ok {
		return
	}
	less := func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) }
	switch ord.Field {
	case "title":
		less = func(i, j int) bool { return views[i].Title < views[j].Title }
	case "due_date":
		less = func(i, j int) bool {
			vi, vj := views[i], views[j]
			if vi.DueDate.Valid != vj.DueDate.Valid {
				return vi.DueDate.Valid
			}
			return vi.DueDate.Time.Before(vj.DueDate.Time)
		}
	case "status":
		less = func(i, j int) bool { return views[i].EffectiveStatus.Rank() < views[j].EffectiveStatus.Rank() }
	}
	if !ord.Ascending {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.Slice(views, less)
}
