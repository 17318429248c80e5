// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hlts/internal/applebooks"
	"github.com/starford/hlts/internal/apperr"
	"github.com/starford/hlts/internal/checksum"
)

const (
	defaultDebounce = 2 * time.Second
	exportAttempts  = 3
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, err
	}

	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.debounce <= 0 {
		app.debounce = defaultDebounce
	}

	app.logger.Info("Configuration loaded",
		slog.String("root_dir", app.config.App.Root()),
		slog.String("source_dir", app.config.AppleBooks.Source()),
		slog.String("log_level", app.config.App.LogLevel.String()))

	return app, nil
}

// Run performs one export with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	if _, err := app.export(ctx); err != nil {
		app.logger.Error("export: failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Watch exports once, then exports again whenever the Apple Books
// annotation database changes, until ctx is cancelled or a shutdown
// signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	report, err := app.export(ctx)
	if err != nil {
		app.logger.Error("export: failed", slog.String("error", err.Error()))
		return err
	}
	last := report.Checksum

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	annotationDir := filepath.Join(app.config.AppleBooks.Source(), applebooks.AnnotationDir)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return applebooks.Watch(gCtx, annotationDir, app.debounce, app.logger, func() {
			sum, err := liveChecksum(annotationDir)
			if err != nil {
				app.logger.Warn("watch: checksum failed", slog.String("error", err.Error()))
				return
			}
			if sum == last {
				app.logger.Debug("watch: database unchanged")
				return
			}

			report, err := app.exportWithRetry(gCtx)
			switch {
			case errors.Is(err, apperr.ErrBooksRunning):
				app.logger.Info("watch: Apple Books is running, export deferred")
			case err != nil:
				app.logger.Error("watch: export failed", slog.String("error", err.Error()))
			default:
				last = report.Checksum
			}
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			app.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			app.logger.Info("Context cancelled, stopping watch")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	app.logger.Info("Watch stopped")
	return nil
}

// exportWithRetry repeats an export whose database copy was taken while
// Apple Books was still writing it. Conditions a retry cannot change fail
// immediately.
func (a *application) exportWithRetry(ctx context.Context) (*Report, error) {
	var (
		report *Report
		last   error
	)
	_ = retry.Do(
		func() error {
			report, last = a.export(ctx)
			if last != nil && !retryable(last) {
				return retry.Unrecoverable(last)
			}
			return last
		},
		retry.Context(ctx),
		retry.Attempts(exportAttempts),
		retry.Delay(a.debounce),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("watch: export retry",
				slog.Int("attempt", int(n)+1),
				slog.String("error", err.Error()))
		}),
	)
	return report, last
}

func retryable(err error) bool {
	return !errors.Is(err, apperr.ErrBooksRunning) &&
		!errors.Is(err, apperr.ErrConfigurationInvalid) &&
		!errors.Is(err, apperr.ErrDatabaseNotFound) &&
		!errors.Is(err, context.Canceled)
}

func liveChecksum(dir string) (string, error) {
	files, err := applebooks.DatabaseFiles(dir)
	if err != nil {
		return "", err
	}
	return checksum.Files(files...)
}
