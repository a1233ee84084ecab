package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salesreport/internal/config"
	"github.com/salesreport/internal/mailer"
	"github.com/salesreport/internal/store"
)

type App struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	uploads *store.UploadStore
	reports *store.ReportStore
	emails  *store.EmailLogStore
	mailer  *mailer.Mailer
}

func (app *App) Close() {
	app.db.Close()
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		uploads: store.NewUploadStore(db),
		reports: store.NewReportStore(db),
		emails:  store.NewEmailLogStore(db),
		mailer:  mailer.New(mailerConfig(cfg)),
	}, nil
}

func mailerConfig(cfg *config.Config) *mailer.Config {
	mc := &mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Pass:        cfg.SMTPPass,
		FromAddress: cfg.SMTPFromEmail,
		FromName:    cfg.SMTPFromName,
	}
	if cfg.DestinationEmail != "" {
		mc.To = []string{cfg.DestinationEmail}
	}
	return mc
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", app.config.Port),
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		// Uploads can be large and SMTP delivery is synchronous.
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo

	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
