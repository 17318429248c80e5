// Package testutil provides shared test helpers for building Apple Books fixture databases.
package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const librarySchema = `
CREATE TABLE ZBKLIBRARYASSET (
	Z_PK     INTEGER PRIMARY KEY,
	ZASSETID VARCHAR,
	ZTITLE   VARCHAR,
	ZAUTHOR  VARCHAR,
	ZPATH    VARCHAR
);`

const annotationSchema = `
CREATE TABLE ZAEANNOTATION (
	Z_PK                         INTEGER PRIMARY KEY,
	ZANNOTATIONDELETED           INTEGER,
	ZANNOTATIONSTYLE             INTEGER,
	ZANNOTATIONCREATIONDATE      TIMESTAMP,
	ZANNOTATIONMODIFICATIONDATE  TIMESTAMP,
	ZANNOTATIONASSETID           VARCHAR,
	ZANNOTATIONLOCATION          VARCHAR,
	ZANNOTATIONNOTE              VARCHAR,
	ZANNOTATIONSELECTEDTEXT      VARCHAR,
	ZANNOTATIONUUID              VARCHAR
);`

// Book is one ZBKLIBRARYASSET row. Nil fields are stored as NULL.
type Book struct {
	ID     any
	Title  any
	Author any
	Path   any
}

// Highlight is one ZAEANNOTATION row. Nil fields are stored as NULL.
type Highlight struct {
	AssetID  any
	UUID     any
	Text     any
	Note     any
	Style    any
	Location any
	Created  any
	Modified any
	Deleted  bool
}

// AppleBooks creates a directory laid out like the Apple Books documents
// directory, holding one BKLibrary and one AEAnnotation database, and
// returns its path.
func AppleBooks(t *testing.T, books []Book, highlights []Highlight) string {
	t.Helper()
	root := t.TempDir()

	lib := openFixture(t, filepath.Join(root, "BKLibrary", "BKLibrary-1-091020131601.sqlite"), librarySchema)
	for _, b := range books {
		mustExec(t, lib, `INSERT INTO ZBKLIBRARYASSET (ZASSETID, ZTITLE, ZAUTHOR, ZPATH) VALUES (?, ?, ?, ?)`,
			b.ID, b.Title, b.Author, b.Path)
	}

	ann := openFixture(t, filepath.Join(root, "AEAnnotation", "AEAnnotation_v10312011_1727_local.sqlite"), annotationSchema)
	for _, h := range highlights {
		deleted := 0
		if h.Deleted {
			deleted = 1
		}
		mustExec(t, ann, `INSERT INTO ZAEANNOTATION (
			ZANNOTATIONASSETID, ZANNOTATIONUUID, ZANNOTATIONSELECTEDTEXT, ZANNOTATIONNOTE,
			ZANNOTATIONSTYLE, ZANNOTATIONLOCATION, ZANNOTATIONCREATIONDATE,
			ZANNOTATIONMODIFICATIONDATE, ZANNOTATIONDELETED
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.AssetID, h.UUID, h.Text, h.Note, h.Style, h.Location, h.Created, h.Modified, deleted)
	}
	return root
}

func openFixture(t *testing.T, path, schema string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	mustExec(t, db, schema)
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
