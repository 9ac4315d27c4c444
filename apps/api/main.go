package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	echoapi "github.com/mwalimu/darasa/apps/api/echo"
	"github.com/mwalimu/darasa/content"
	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/cache"
	"github.com/mwalimu/darasa/core/dataset"
	"github.com/mwalimu/darasa/core/directory"
	"github.com/mwalimu/darasa/core/forms"
	"github.com/mwalimu/darasa/core/lesson"
	"github.com/mwalimu/darasa/core/quiz"
	"github.com/mwalimu/darasa/core/session"
	"github.com/mwalimu/darasa/core/warehouse"
	emailsvc "github.com/mwalimu/darasa/services/email"
	logsvc "github.com/mwalimu/darasa/services/logger"
	"github.com/mwalimu/darasa/storage/database"
	sqliterepo "github.com/mwalimu/darasa/storage/database/sqlite"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %+v", err)
	}

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	ctx := context.Background()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer db.Close()
	if err := database.Seed(ctx, db); err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}

	// set up the session store
	var sessions session.Store
	if conf.Session.Backend == "redis" {
		sessions, err = session.NewRedisStore(ctx, conf.Session.RedisURL, conf.Session.TTL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
	} else {
		sessions = session.NewMemoryStore(conf.Session.TTL)
	}

	// load the lesson catalog
	catalog, err := lesson.NewCatalog(content.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading lesson catalog: %v", err), err)
	}

	// set up validation
	validate, translator := core.NewValidator()
	account.RegisterValidators(validate, translator)
	forms.RegisterValidators(validate, translator)

	// set up services
	acctSvc := account.NewService(conf, logger, mailSvc)
	dirSvc := directory.NewService(sqliterepo.NewPersonRepository(db))
	feed := dataset.NewLiveFeed()

	// =========================================================================
	// Schedules: live metrics tick + idle session sweep

	sched := cron.New()
	if _, err := sched.AddFunc("@every 1m", func() { feed.Refresh() }); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling live refresh: %v", err), err)
	}
	if _, err := sched.AddFunc("@every 10m", func() {
		if n := sessions.Sweep(context.Background()); n > 0 {
			logger.Info(fmt.Sprintf("swept %d idle sessions", n))
		}
	}); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling session sweep: %v", err), err)
	}
	sched.Start()
	defer sched.Stop()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Conf:         conf,
		Logger:       logger,
		Catalog:      catalog,
		Sessions:     sessions,
		QuizSvc:      quiz.NewService(),
		AccountSvc:   acctSvc,
		DirectorySvc: dirSvc,
		WarehouseCli: warehouse.NewClient(conf.Warehouse),
		DataCache:    cache.NewDataCache(5*time.Minute, 100),
		LiveFeed:     feed,
		Validate:     validate,
		Translator:   translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(stopCtx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
