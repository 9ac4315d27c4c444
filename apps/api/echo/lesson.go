package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core/lesson"
)

type lessonApi struct {
	catalog *lesson.Catalog
}

func registerLessonAPI(g *echo.Group, catalog *lesson.Catalog) {
	api := lessonApi{catalog: catalog}

	lg := g.Group("/lessons")
	lg.GET("", api.query)
	lg.GET("/:slug", api.retrieve)
	lg.GET("/:slug/nav", api.nav)
}

// query lists chapters grouped by course part, the course's table of contents.
func (api *lessonApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.catalog.Parts())
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	ch, err := api.catalog.Get(ctx.Param("slug"))
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding chapter by slug")
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *lessonApi) nav(ctx echo.Context) error {
	nav, err := api.catalog.Nav(ctx.Param("slug"))
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving chapter navigation")
	}
	return ctx.JSON(http.StatusOK, nav)
}
