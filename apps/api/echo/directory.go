package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/directory"
)

type directoryApi struct {
	svc      *directory.Service
	validate *validator.Validate
}

func registerDirectoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *directory.Service, validate *validator.Validate) {
	api := directoryApi{svc: svc, validate: validate}

	dg := g.Group("/directory", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, permissionMiddleware(account.PermWrite))
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update, permissionMiddleware(account.PermWrite))
	dg.DELETE("/:id", api.destroy, permissionMiddleware(account.PermDelete))
}

func (api *directoryApi) create(ctx echo.Context) error {
	var data directory.NewPerson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPerson")
	}
	data.Clean()
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "creating person")
	}
	return ctx.JSON(http.StatusCreated, p)
}

// query lists everyone, or searches by name/email when ?search= is given.
func (api *directoryApi) query(ctx echo.Context) error {
	persons, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "querying persons")
	}
	if persons == nil {
		persons = []directory.Person{}
	}
	return ctx.JSON(http.StatusOK, persons)
}

func (api *directoryApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding person by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *directoryApi) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data directory.UpdatePerson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePerson")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "updating person")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *directoryApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting person")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
