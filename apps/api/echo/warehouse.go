package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/warehouse"
)

type warehouseApi struct {
	client *warehouse.Client
}

func registerWarehouseAPI(g *echo.Group, jwt echo.MiddlewareFunc, client *warehouse.Client) {
	api := warehouseApi{client: client}

	wg := g.Group("/warehouse", jwt)
	wg.GET("/status", api.status)
	wg.POST("/query", api.query, permissionMiddleware(account.PermViewAnalytics))
}

type StatementRequest struct {
	Statement string `json:"statement" validate:"required"`
}

func (api *warehouseApi) status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.client.Status())
}

// query runs one statement against the configured warehouse. An unconfigured
// connector reports its missing keys, upstream failures surface their message.
func (api *warehouseApi) query(ctx echo.Context) error {
	var data StatementRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatementRequest")
	}
	if core.CleanString(data.Statement) == "" {
		return core.NewValidationError(nil,
			core.FieldError{Field: "statement", Error: "statement is required"})
	}

	res, err := api.client.ExecuteStatement(ctx.Request().Context(), data.Statement)
	if err != nil {
		var ncErr *warehouse.NotConfiguredError
		if errors.As(err, &ncErr) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, ncErr.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, errors.Cause(err).Error())
	}
	return ctx.JSON(http.StatusOK, res)
}
