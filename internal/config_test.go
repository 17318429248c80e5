package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/hlts/internal/apperr"
	pkgconfig "github.com/starford/hlts/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestConfig_SamePrefixesInvalid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Annotations.CollectionPrefix = "#"
	err := cfg.Validate()
	if !errors.Is(err, apperr.ErrConfigurationInvalid) {
		t.Fatalf("err = %v, want ErrConfigurationInvalid", err)
	}
}

func TestConfig_EmptyRootInvalid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.RootDir = ""
	if err := cfg.Validate(); !errors.Is(err, apperr.ErrConfigurationInvalid) {
		t.Fatalf("err = %v, want ErrConfigurationInvalid", err)
	}
}

func TestConfig_EmptyProcessNameInvalid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.AppleBooks.ProcessName = ""
	err := cfg.Validate()
	if !errors.Is(err, apperr.ErrConfigurationInvalid) {
		t.Fatalf("err = %v, want ErrConfigurationInvalid", err)
	}
	if !strings.Contains(err.Error(), "process_name") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestConfig_ExportDir(t *testing.T) {
	cfg := NewDefaultConfig()
	day := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	if got, want := cfg.App.ExportDir(day), filepath.Join("2024-05-01", "applebooks"); got != want {
		t.Errorf("ExportDir = %q, want %q", got, want)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: DEBUG
  root_dir: /tmp/hlts
annotations:
  tag_prefix: "%"
  collection_prefix: "&"
  starred_collection: fav
apple_books:
  process_name: Books
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := pkgconfig.LoadOrInit(path, NewDefaultConfig)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.Root() != "/tmp/hlts" {
		t.Errorf("root = %q", cfg.App.Root())
	}
	if cfg.Annotations.TagPrefix != "%" || cfg.Annotations.CollectionPrefix != "&" || cfg.Annotations.StarredCollection != "fav" {
		t.Errorf("annotations = %+v", cfg.Annotations)
	}
	if cfg.AppleBooks.SourceDir != NewDefaultConfig().AppleBooks.SourceDir {
		t.Errorf("source dir should keep its default, got %q", cfg.AppleBooks.SourceDir)
	}
}

func TestConfig_LoadInvalidIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "annotations:\n  tag_prefix: \"ab\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pkgconfig.LoadOrInit(path, NewDefaultConfig); !errors.Is(err, apperr.ErrConfigurationInvalid) {
		t.Fatalf("err = %v, want ErrConfigurationInvalid", err)
	}
}
