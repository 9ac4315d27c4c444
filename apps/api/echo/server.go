package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/cache"
	"github.com/mwalimu/darasa/core/dataset"
	"github.com/mwalimu/darasa/core/directory"
	"github.com/mwalimu/darasa/core/lesson"
	"github.com/mwalimu/darasa/core/quiz"
	"github.com/mwalimu/darasa/core/session"
	"github.com/mwalimu/darasa/core/warehouse"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Catalog        *lesson.Catalog
		Sessions       session.Store
		QuizSvc        *quiz.Service
		AccountSvc     *account.Service
		DirectorySvc   *directory.Service
		WarehouseCli   *warehouse.Client
		DataCache      *cache.DataCache
		LiveFeed       *dataset.LiveFeed
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.stopOnFatalErr)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := configureAuth(conf)
	sess := sessionMiddleware(s.opts.Sessions)

	registerLessonAPI(v1, s.opts.Catalog)
	registerSessionAPI(v1, sess, s.opts.Sessions)
	registerQuizAPI(v1, sess, s.opts.Catalog, s.opts.QuizSvc, s.opts.Sessions, s.opts.Validate)
	registerAccountAPI(v1, jwt, sess, s.opts.AccountSvc, s.opts.Sessions, s.opts.Validate)
	registerFormsAPI(v1, s.opts.Validate)
	registerDatasetAPI(v1, s.opts.DataCache, s.opts.LiveFeed)
	registerDirectoryAPI(v1, jwt, s.opts.DirectorySvc, s.opts.Validate)
	registerWarehouseAPI(v1, jwt, s.opts.WarehouseCli)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// stopOnFatalErr shuts the server down when the error handler catches an
// unrecoverable error.
func (s *server) stopOnFatalErr() {
	if err := s.Stop(context.Background()); err != nil {
		s.app.Logger.Error(err)
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
