package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/session"
)

type sessionApi struct {
	store session.Store
}

func registerSessionAPI(g *echo.Group, sess echo.MiddlewareFunc, store session.Store) {
	api := sessionApi{store: store}

	sg := g.Group("/session", sess)
	sg.POST("", api.create)
	sg.DELETE("", api.clear)
	sg.GET("/keys", api.queryKeys)
	sg.GET("/keys/:key", api.retrieveKey)
	sg.PUT("/keys/:key", api.setKey)
	sg.DELETE("/keys/:key", api.deleteKey)
	sg.POST("/counters/:name", api.counter)
}

type (
	SessionResponse struct {
		SessionID string `json:"session_id"`
	}

	KeyValueResponse struct {
		Key   string      `json:"key"`
		Value interface{} `json:"value"`
	}

	SetValueRequest struct {
		Value interface{} `json:"value"`
	}

	CounterRequest struct {
		Op string `json:"op" validate:"required"`
	}

	CounterResponse struct {
		Name  string `json:"name"`
		Value int64  `json:"value"`
	}
)

func (api *sessionApi) create(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SessionResponse{SessionID: id})
}

func (api *sessionApi) clear(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	if err := api.store.Clear(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) queryKeys(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	keys, err := api.store.Keys(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing session keys")
	}
	if keys == nil {
		keys = []string{}
	}
	return ctx.JSON(http.StatusOK, keys)
}

func (api *sessionApi) retrieveKey(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	val, err := api.store.Get(ctx.Request().Context(), id, ctx.Param("key"))
	if err != nil {
		if errors.Cause(err) == session.ErrKeyNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting session value")
	}
	return ctx.JSON(http.StatusOK, KeyValueResponse{Key: ctx.Param("key"), Value: val})
}

func (api *sessionApi) setKey(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	var data SetValueRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetValueRequest")
	}
	if err := api.store.Set(ctx.Request().Context(), id, ctx.Param("key"), data.Value); err != nil {
		return errors.Wrap(err, "setting session value")
	}
	return ctx.JSON(http.StatusOK, KeyValueResponse{Key: ctx.Param("key"), Value: data.Value})
}

func (api *sessionApi) deleteKey(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	if err := api.store.Delete(ctx.Request().Context(), id, ctx.Param("key")); err != nil {
		if errors.Cause(err) == session.ErrKeyNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session value")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// counter implements the counter demo: increment, decrement or reset a
// numeric session value.
func (api *sessionApi) counter(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	var data CounterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CounterRequest")
	}

	name := ctx.Param("name")
	rctx := ctx.Request().Context()

	var value int64
	switch data.Op {
	case "increment":
		value, err = api.store.Increment(rctx, id, name, 1)
	case "decrement":
		value, err = api.store.Increment(rctx, id, name, -1)
	case "reset":
		err = api.store.ResetCounter(rctx, id, name)
	default:
		return core.NewValidationError(nil,
			core.FieldError{Field: "op", Error: "op must be one of increment, decrement, reset"})
	}
	if err != nil {
		if errors.Cause(err) == session.ErrNotCounter {
			return core.NewValidationError(nil,
				core.FieldError{Field: "name", Error: session.ErrNotCounter.Error()})
		}
		return errors.Wrapf(err, "applying counter op %s", data.Op)
	}
	return ctx.JSON(http.StatusOK, CounterResponse{Name: name, Value: value})
}
