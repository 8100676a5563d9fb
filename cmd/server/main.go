package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/categories"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/forfaits"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/health"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/middleware"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/config"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/database"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/logger"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/metrics"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Path:        cfg.Logging.Path,
		Development: !cfg.IsProduction(),
	})
	defer logg.Sync()

	logg.Info("Starting forfaits API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver))

	db, err := database.Open(cfg.Database, logg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	repo := models.NewForfaitsRepository(db)

	router := app.NewRouter(app.Handlers{
		Forfaits:   forfaits.NewForfaitHandler(repo, logg, m),
		Categories: categories.NewCategoryHandler(repo, logg),
		Health: health.NewHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, logg),
	}, middleware.New(logg, m, cfg.Cors.AllowedOrigins), reg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logg.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logg.Info("Server stopped")
	return nil
}
