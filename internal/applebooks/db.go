// Package applebooks reads highlights out of copies of the Apple Books
// SQLite databases.
package applebooks

import (
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Directory names of the two Apple Books databases inside the container's
// Documents directory.
const (
	LibraryDir    = "BKLibrary"
	AnnotationDir = "AEAnnotation"
)

// DB wraps a read-only connection to one Apple Books database file.
type DB struct {
	conn *sqlx.DB
	path string
}

// Open opens the SQLite database at path read-only.
func Open(path string) (*DB, error) {
	dsn := (&url.URL{Scheme: "file", OmitHost: true, Path: path, RawQuery: "mode=ro&_busy_timeout=5000"}).String()
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("applebooks: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applebooks: ping %s: %w", path, err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Path returns the database file the DB was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
