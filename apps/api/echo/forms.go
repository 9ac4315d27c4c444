package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core/forms"
)

type formsApi struct {
	validate *validator.Validate
}

func registerFormsAPI(g *echo.Group, validate *validator.Validate) {
	api := formsApi{validate: validate}
	g.POST("/forms/register", api.register)
}

// register is the validation demo: the form is validated and the verdict
// echoed back, nothing is stored.
func (api *formsApi) register(ctx echo.Context) error {
	var data forms.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	data.Clean()
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Registration successful! Welcome, " + data.Name + "!"})
}
