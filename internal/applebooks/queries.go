package applebooks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/hlts/internal/models"
)

const sourcesSQL = `
SELECT
	ZASSETID AS id,
	ZTITLE   AS name,
	ZAUTHOR  AS author,
	ZPATH    AS path
FROM ZBKLIBRARYASSET
ORDER BY ZTITLE`

const annotationsSQL = `
SELECT
	ZANNOTATIONASSETID          AS source_id,
	ZANNOTATIONUUID             AS id,
	ZANNOTATIONSELECTEDTEXT     AS text,
	ZANNOTATIONNOTE             AS notes,
	ZANNOTATIONSTYLE            AS style,
	ZANNOTATIONLOCATION         AS epubcfi,
	ZANNOTATIONCREATIONDATE     AS date_created,
	ZANNOTATIONMODIFICATIONDATE AS date_modified
FROM ZAEANNOTATION
WHERE ZANNOTATIONSELECTEDTEXT IS NOT NULL
	AND ZANNOTATIONDELETED = 0
ORDER BY ZANNOTATIONASSETID`

type sourceRow struct {
	ID     sql.NullString `db:"id"`
	Name   *string        `db:"name"`
	Author *string        `db:"author"`
	Path   *string        `db:"path"`
}

type annotationRow struct {
	SourceID     sql.NullString `db:"source_id"`
	ID           sql.NullString `db:"id"`
	Text         *string        `db:"text"`
	Notes        *string        `db:"notes"`
	Style        any            `db:"style"`
	Location     *string        `db:"epubcfi"`
	DateCreated  any            `db:"date_created"`
	DateModified any            `db:"date_modified"`
}

// Sources returns every library asset ordered by title.
func (db *DB) Sources(ctx context.Context) ([]models.RawSource, error) {
	var rows []sourceRow
	if err := db.conn.SelectContext(ctx, &rows, sourcesSQL); err != nil {
		return nil, fmt.Errorf("applebooks: query sources: %w", err)
	}

	out := make([]models.RawSource, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RawSource{
			ID:     r.ID.String,
			Name:   r.Name,
			Author: r.Author,
			Path:   r.Path,
		})
	}
	return out, nil
}

// Annotations returns every live annotation that has selected text,
// ordered by asset id.
func (db *DB) Annotations(ctx context.Context) ([]models.RawAnnotation, error) {
	var rows []annotationRow
	if err := db.conn.SelectContext(ctx, &rows, annotationsSQL); err != nil {
		return nil, fmt.Errorf("applebooks: query annotations: %w", err)
	}

	out := make([]models.RawAnnotation, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RawAnnotation{
			ID:           r.ID.String,
			SourceID:     r.SourceID.String,
			Text:         r.Text,
			Notes:        r.Notes,
			Style:        r.Style,
			Location:     r.Location,
			DateCreated:  appleSeconds(r.DateCreated),
			DateModified: appleSeconds(r.DateModified),
		})
	}
	return out, nil
}

// appleSeconds undoes the driver's decoding of integral TIMESTAMP values
// as Unix times: the stored number is seconds since the Apple epoch.
func appleSeconds(v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
