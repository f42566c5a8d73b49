package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/webservicios/backoffice/internal/config"
	"github.com/webservicios/backoffice/internal/es"
	"github.com/webservicios/backoffice/internal/httpserver"
	"github.com/webservicios/backoffice/internal/logging"
	authmw "github.com/webservicios/backoffice/internal/middleware/auth"
	loggingmw "github.com/webservicios/backoffice/internal/middleware/logging"
	"github.com/webservicios/backoffice/internal/mykafka"
	"github.com/webservicios/backoffice/internal/repo"
	"github.com/webservicios/backoffice/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := repo.GormRepo{DB: db}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = gormRepo.SeedDefaultRoles(seedCtx)
	cancel()
	if err != nil {
		log.Fatalf("role seed error: %v", err)
	}

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	}

	authSvc := &service.AuthService{
		Repo:      gormRepo,
		JWTSecret: []byte(cfg.JWT_SECRET),
	}

	deps := &httpserver.Deps{
		AuthHandler:       &httpserver.AuthHTTP{Svc: authSvc, Producer: producer},
		UserHandler:       &httpserver.UserHTTP{Svc: authSvc},
		RoleHandler:       &httpserver.RoleHTTP{Repo: gormRepo},
		PermissionHandler: &httpserver.PermissionHTTP{Repo: gormRepo},
		AssetHandler:      &httpserver.AssetHTTP{Repo: gormRepo, Producer: producer},
		ServiceHandler:    &httpserver.ServiceHTTP{Repo: gormRepo, Producer: producer},
		AuthMW:            authmw.New([]byte(cfg.JWT_SECRET), authSvc),
	}

	if cfg.ES_URL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		deps.AssetHandler.ES = client
		deps.ServiceHandler.ES = client
		deps.SearchHandler = &httpserver.SearchHTTP{ES: client, Index: es.CatalogIndex}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "addr", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
