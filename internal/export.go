package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/hlts/internal/annotation"
	"github.com/starford/hlts/internal/applebooks"
	"github.com/starford/hlts/internal/apperr"
	"github.com/starford/hlts/internal/checksum"
	"github.com/starford/hlts/internal/models"
	"github.com/starford/hlts/internal/storage"
)

// Output file names inside an export directory.
const (
	SourcesFile     = "sources.json"
	AnnotationsFile = "annotations.json"
)

// Report summarises one export run.
type Report struct {
	Dir         string // export directory, relative to the workspace root
	Sources     int
	Annotations int
	Skipped     int
	Unmatched   int
	Checksum    string // digest of the exported annotation database files
}

func (a *application) export(ctx context.Context) (*Report, error) {
	cfg := a.config

	builder, err := annotation.NewBuilder(cfg.Annotations, a.logger)
	if err != nil {
		return nil, err
	}

	if !a.force {
		running, err := applebooks.IsRunning(ctx, cfg.AppleBooks.ProcessName)
		if err != nil {
			return nil, err
		}
		if running {
			return nil, fmt.Errorf("export: process %q: %w", cfg.AppleBooks.ProcessName, apperr.ErrBooksRunning)
		}
	}

	root := cfg.App.Root()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("export: create root dir: %w", err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("export: init storage: %w", err)
	}

	now := a.now()
	dir := cfg.App.ExportDir(now)
	if err := store.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("export: reset %s: %w", dir, err)
	}

	dbDir := filepath.Join(dir, "db")
	for _, name := range []string{applebooks.LibraryDir, applebooks.AnnotationDir} {
		src := filepath.Join(cfg.AppleBooks.Source(), name)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("export: %s: %w", src, apperr.ErrDatabaseNotFound)
		}
		if err := store.CopyDir(src, filepath.Join(dbDir, name)); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("export: databases copied", slog.String("dir", dbDir))

	absDB, err := store.Abs(dbDir)
	if err != nil {
		return nil, err
	}
	sources, raws, err := readDatabases(ctx, absDB)
	if err != nil {
		return nil, err
	}
	files, err := applebooks.DatabaseFiles(filepath.Join(absDB, applebooks.AnnotationDir))
	if err != nil {
		return nil, err
	}
	sum, err := checksum.Files(files...)
	if err != nil {
		return nil, err
	}

	anns, errs := builder.BuildAll(raws)
	result := annotation.Merge(sources, anns, now)
	for _, id := range result.DuplicateSources {
		a.logger.Warn("export: duplicate source id", slog.String("source_id", id))
	}

	if err := store.WriteJSON(filepath.Join(dir, SourcesFile), result.SourcesDocument()); err != nil {
		return nil, err
	}
	if err := store.WriteJSON(filepath.Join(dir, AnnotationsFile), result.AnnotationsDocument()); err != nil {
		return nil, err
	}

	report := &Report{
		Dir:         dir,
		Sources:     len(result.Sources),
		Annotations: len(result.Annotations),
		Skipped:     len(errs),
		Unmatched:   result.Unmatched,
		Checksum:    sum,
	}
	a.logger.Info("export: complete",
		slog.String("dir", report.Dir),
		slog.Int("sources", report.Sources),
		slog.Int("annotations", report.Annotations),
		slog.Int("skipped", report.Skipped),
		slog.Int("unmatched", report.Unmatched),
		slog.String("checksum", report.Checksum))
	return report, nil
}

func readDatabases(ctx context.Context, dbDir string) ([]models.RawSource, []models.RawAnnotation, error) {
	lib, err := applebooks.OpenIn(filepath.Join(dbDir, applebooks.LibraryDir))
	if err != nil {
		return nil, nil, err
	}
	defer lib.Close()

	sources, err := lib.Sources(ctx)
	if err != nil {
		return nil, nil, err
	}

	ann, err := applebooks.OpenIn(filepath.Join(dbDir, applebooks.AnnotationDir))
	if err != nil {
		return nil, nil, err
	}
	defer ann.Close()

	raws, err := ann.Annotations(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sources, raws, nil
}
