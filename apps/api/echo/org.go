package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uzimahq/uzima/core/org"
)

type orgApi struct {
	svc *org.Service
}

func registerOrgAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *org.Service) {
	api := orgApi{svc: svc}

	lg := g.Group("/locations", jwt)
	lg.GET("", api.queryLocations)
	lg.POST("", api.createLocation, adminMiddleware())
	lg.GET("/:id", api.retrieveLocation)
	lg.PUT("/:id", api.updateLocation, adminMiddleware())
	lg.DELETE("/:id", api.destroyLocation, adminMiddleware())
	lg.GET("/:id/departments", api.queryLocationDepartments)

	dg := g.Group("/departments", jwt)
	dg.GET("", api.queryDepartments)
	dg.POST("", api.createDepartment, adminMiddleware())
	dg.GET("/:id", api.retrieveDepartment)
	dg.PUT("/:id", api.updateDepartment, adminMiddleware())
	dg.DELETE("/:id", api.destroyDepartment, adminMiddleware())
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Locations

func (api *orgApi) createLocation(ctx echo.Context) error {
	var data org.NewLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLocation")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	loc, err := api.svc.CreateLocation(claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating location")
	}
	return ctx.JSON(http.StatusCreated, loc)
}

func (api *orgApi) queryLocations(ctx echo.Context) error {
	locations, err := api.svc.QueryAllLocations()
	if err != nil {
		return errors.Wrap(err, "querying locations")
	}
	if locations == nil {
		locations = []org.Location{}
	}
	return ctx.JSON(http.StatusOK, locations)
}

func (api *orgApi) retrieveLocation(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	loc, err := api.svc.GetLocationByID(id)
	if err != nil {
		if errors.Cause(err) == org.ErrLocationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding location by ID")
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *orgApi) updateLocation(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetLocationByID(id)
	if err != nil {
		if errors.Cause(err) == org.ErrLocationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding location by ID")
	}

	var data org.UpdateLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLocation")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	loc, err := api.svc.UpdateLocation(claims.UserID(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating location")
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *orgApi) destroyLocation(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.svc.DeleteLocation(claims.UserID(), id); err != nil {
		if errors.Cause(err) == org.ErrLocationNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *orgApi) queryLocationDepartments(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.GetLocationByID(id); err != nil {
		if errors.Cause(err) == org.ErrLocationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding location by ID")
	}
	departments, err := api.svc.QueryDepartmentsByLocation(id)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if departments == nil {
		departments = []org.Department{}
	}
	return ctx.JSON(http.StatusOK, departments)
}

// Departments

func (api *orgApi) createDepartment(ctx echo.Context) error {
	var data org.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	dept, err := api.svc.CreateDepartment(claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *orgApi) queryDepartments(ctx echo.Context) error {
	departments, err := api.svc.QueryAllDepartments()
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if departments == nil {
		departments = []org.Department{}
	}
	return ctx.JSON(http.StatusOK, departments)
}

func (api *orgApi) retrieveDepartment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	dept, err := api.svc.GetDepartmentByID(id)
	if err != nil {
		if errors.Cause(err) == org.ErrDepartmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding department by ID")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *orgApi) updateDepartment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetDepartmentByID(id)
	if err != nil {
		if errors.Cause(err) == org.ErrDepartmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding department by ID")
	}

	var data org.UpdateDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	dept, err := api.svc.UpdateDepartment(claims.UserID(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *orgApi) destroyDepartment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.svc.DeleteDepartment(claims.UserID(), id); err != nil {
		if errors.Cause(err) == org.ErrDepartmentNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
