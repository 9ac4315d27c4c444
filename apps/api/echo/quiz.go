package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core/lesson"
	"github.com/mwalimu/darasa/core/quiz"
	"github.com/mwalimu/darasa/core/session"
)

type quizApi struct {
	catalog  *lesson.Catalog
	svc      *quiz.Service
	sessions session.Store
	validate *validator.Validate
}

func registerQuizAPI(
	g *echo.Group,
	sess echo.MiddlewareFunc,
	catalog *lesson.Catalog,
	svc *quiz.Service,
	sessions session.Store,
	validate *validator.Validate,
) {
	api := quizApi{
		catalog:  catalog,
		svc:      svc,
		sessions: sessions,
		validate: validate,
	}
	g.POST("/lessons/:slug/quiz", api.submit, sess)
}

// submit grades a quiz submission against the chapter's answer key and records
// the latest result in the caller's session. Resubmitting overwrites.
func (api *quizApi) submit(ctx echo.Context) error {
	slug := ctx.Param("slug")
	qz, err := api.catalog.QuizFor(slug)
	if err != nil {
		switch errors.Cause(err) {
		case lesson.ErrNotFound, lesson.ErrNoQuiz:
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding quiz by slug")
	}

	var sub quiz.Submission
	if err := ctx.Bind(&sub); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := api.validate.Struct(sub); err != nil {
		return err
	}

	result, err := api.svc.Grade(qz, sub)
	if err != nil {
		return err
	}

	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	if err := api.sessions.Set(ctx.Request().Context(), id, "quiz:"+slug, result); err != nil {
		return errors.Wrap(err, "recording quiz result")
	}
	return ctx.JSON(http.StatusOK, result)
}
