// Package models defines the domain types for hlts.
package models

const (
	// Origin identifies the vendor every exported annotation comes from.
	Origin = "applebooks"
	// Version is the Apple Books release the queries were written against.
	Version = "Books v1.19 (1645)"
)

// RawSource is one row of the Apple Books library database.
type RawSource struct {
	ID     string
	Name   *string
	Author *string
	Path   *string
}

// RawAnnotation is one row of the Apple Books annotation database.
//
// Style and the dates keep whatever dynamic type SQLite delivered so a single
// odd column value cannot fail the scan of the whole batch.
type RawAnnotation struct {
	ID           string
	SourceID     string
	Text         *string
	Notes        *string
	Style        any
	Location     *string
	DateCreated  any
	DateModified any
}

// Annotation is a normalized highlight or note.
type Annotation struct {
	ID           string
	Text         []string
	Notes        string
	Tags         []string
	Collections  []string
	IsStarred    bool
	DateCreated  *string
	DateModified *string
	Style        *string
	Location     *string
	LocationKey  *string

	SourceID     string
	SourceName   *string
	SourceAuthor *string
}

// Source is a book (or PDF) that owns a set of annotations.
type Source struct {
	ID          string
	Name        *string
	Author      *string
	Path        *string
	Annotations []*Annotation
}

// NewSource creates an empty source from its raw row.
func NewSource(raw RawSource) *Source {
	return &Source{ID: raw.ID, Name: raw.Name, Author: raw.Author, Path: raw.Path}
}

// HasAnnotations reports whether at least one annotation was attached.
func (s *Source) HasAnnotations() bool {
	return len(s.Annotations) > 0
}

// SourceRef is the source block embedded in a flat annotation record.
type SourceRef struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Author *string `json:"author"`
}

// AnnotationMetadata holds the per-annotation metadata block.
type AnnotationMetadata struct {
	DateCreated  *string `json:"date_created"`
	DateModified *string `json:"date_modified"`
	Style        *string `json:"style"`
	EpubCFI      *string `json:"epubcfi"`
	Location     *string `json:"location"`
	Origin       string  `json:"origin"`
	IsStarred    bool    `json:"is_starred"`
}

// AnnotationRecord is the serialized form of an Annotation.
type AnnotationRecord struct {
	ID          string             `json:"id"`
	Text        []string           `json:"text"`
	Notes       string             `json:"notes"`
	Source      *SourceRef         `json:"source,omitempty"`
	Tags        []string           `json:"tags"`
	Collections []string           `json:"collections"`
	Metadata    AnnotationMetadata `json:"metadata"`
}

// SourceRecord is the serialized form of a Source with its annotations nested.
type SourceRecord struct {
	ID          string             `json:"id"`
	Name        *string            `json:"name"`
	Author      *string            `json:"author"`
	Path        *string            `json:"path"`
	Annotations []AnnotationRecord `json:"annotations"`
}

// Metadata describes one export run.
type Metadata struct {
	Date             string `json:"date"`
	CountSources     int    `json:"count_sources"`
	CountAnnotations int    `json:"count_annotations"`
	Version          string `json:"version"`
}

// SourcesDocument is the content of sources.json.
type SourcesDocument struct {
	Sources  []SourceRecord `json:"sources"`
	Metadata Metadata       `json:"metadata"`
}

// AnnotationsDocument is the content of annotations.json.
type AnnotationsDocument struct {
	Annotations []AnnotationRecord `json:"annotations"`
	Metadata    Metadata           `json:"metadata"`
}

// Record serializes the annotation. The source block is omitted when the
// annotation is nested under its source.
func (a *Annotation) Record(withSource bool) AnnotationRecord {
	r := AnnotationRecord{
		ID:          a.ID,
		Text:        nonNil(a.Text),
		Notes:       a.Notes,
		Tags:        nonNil(a.Tags),
		Collections: nonNil(a.Collections),
		Metadata: AnnotationMetadata{
			DateCreated:  a.DateCreated,
			DateModified: a.DateModified,
			Style:        a.Style,
			EpubCFI:      a.Location,
			Location:     a.LocationKey,
			Origin:       Origin,
			IsStarred:    a.IsStarred,
		},
	}
	if withSource {
		r.Source = &SourceRef{ID: a.SourceID, Name: a.SourceName, Author: a.SourceAuthor}
	}
	return r
}

// Record serializes the source and its annotations.
func (s *Source) Record() SourceRecord {
	anns := make([]AnnotationRecord, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		anns = append(anns, a.Record(false))
	}
	return SourceRecord{
		ID:          s.ID,
		Name:        s.Name,
		Author:      s.Author,
		Path:        s.Path,
		Annotations: anns,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
