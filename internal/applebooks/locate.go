package applebooks

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/starford/hlts/internal/apperr"
)

// FindDatabase returns the first *.sqlite file in dir, in name order.
func FindDatabase(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.sqlite"))
	if err != nil {
		return "", fmt.Errorf("applebooks: glob %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("applebooks: %s: %w", dir, apperr.ErrDatabaseNotFound)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// OpenIn locates the database in dir and opens it read-only.
func OpenIn(dir string) (*DB, error) {
	path, err := FindDatabase(dir)
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// DatabaseFiles returns the database in dir together with its journal
// files, whether or not they exist.
func DatabaseFiles(dir string) ([]string, error) {
	path, err := FindDatabase(dir)
	if err != nil {
		return nil, err
	}
	return []string{path, path + "-wal", path + "-shm"}, nil
}
