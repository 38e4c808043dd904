package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/openshelf/catalog/internal/config"
	"github.com/openshelf/catalog/internal/es"
	"github.com/openshelf/catalog/internal/handlers"
	"github.com/openshelf/catalog/internal/logging"
	authmw "github.com/openshelf/catalog/internal/middleware/auth"
	"github.com/openshelf/catalog/internal/mykafka"
	authsvc "github.com/openshelf/catalog/internal/service/auth"
	"github.com/openshelf/catalog/internal/tokenstore"
	httpserver "github.com/openshelf/catalog/internal/transport/http"
	"github.com/openshelf/catalog/internal/userdir"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	store := tokenstore.New(db)
	directory := userdir.New(db)
	auth := &authsvc.Service{
		Store:             store,
		Directory:         directory,
		IssueRefreshToken: configuration.IssueRefreshToken,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		Gate: &authmw.Gate{Auth: auth},
		TokenHandler: &handlers.TokenHandler{
			Auth:       auth,
			Directory:  directory,
			Producer:   prod,
			AccessTTL:  time.Duration(configuration.AccessTokenLifetime) * time.Second,
			RefreshTTL: time.Duration(configuration.RefreshTokenLifetime) * time.Second,
		},
		UserHandler:    &handlers.UserHandler{DB: db, Producer: prod},
		LibraryHandler: &handlers.LibraryHandler{DB: db, Producer: prod},
		AuthorHandler:  &handlers.AuthorHandler{DB: db, Producer: prod},
		SeriesHandler:  &handlers.SeriesHandler{DB: db, Producer: prod},
		StoryHandler:   &handlers.StoryHandler{DB: db, Producer: prod},
		VolumeHandler:  &handlers.VolumeHandler{DB: db, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: "story"},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
