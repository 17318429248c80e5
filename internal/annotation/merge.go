package annotation

import (
	"sort"
	"time"

	"github.com/starford/hlts/internal/models"
)

// Result is the outcome of joining annotations to their sources.
type Result struct {
	// Sources that own at least one annotation, in input order.
	Sources []*models.Source
	// Annotations in output order: each source's annotations, then the
	// annotations whose source is unknown.
	Annotations []*models.Annotation
	// Unmatched counts annotations whose source id matched no source.
	Unmatched int
	// DuplicateSources lists source ids seen more than once; the first row wins.
	DuplicateSources []string
	Date             time.Time
}

// Merge joins annotations to sources on the source id, copies the source name
// and author onto each matched annotation and orders every source's
// annotations by location. Sources without annotations are dropped;
// annotations without a source are kept with nil source fields.
func Merge(sources []models.RawSource, annotations []*models.Annotation, now time.Time) *Result {
	res := &Result{Date: now}

	byID := make(map[string]*models.Source, len(sources))
	ordered := make([]*models.Source, 0, len(sources))
	for _, raw := range sources {
		if _, dup := byID[raw.ID]; dup {
			res.DuplicateSources = append(res.DuplicateSources, raw.ID)
			continue
		}
		s := models.NewSource(raw)
		byID[raw.ID] = s
		ordered = append(ordered, s)
	}

	var unmatched []*models.Annotation
	for _, a := range annotations {
		s, ok := byID[a.SourceID]
		if !ok {
			a.SourceName, a.SourceAuthor = nil, nil
			unmatched = append(unmatched, a)
			continue
		}
		a.SourceName, a.SourceAuthor = s.Name, s.Author
		s.Annotations = append(s.Annotations, a)
	}

	for _, s := range ordered {
		if !s.HasAnnotations() {
			continue
		}
		SortByLocation(s.Annotations)
		res.Sources = append(res.Sources, s)
		res.Annotations = append(res.Annotations, s.Annotations...)
	}

	SortByLocation(unmatched)
	res.Unmatched = len(unmatched)
	res.Annotations = append(res.Annotations, unmatched...)
	return res
}

// SortByLocation orders annotations by location key, nil keys last, ties
// broken by id.
func SortByLocation(anns []*models.Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		a, b := anns[i], anns[j]
		switch {
		case a.LocationKey == nil && b.LocationKey == nil:
		case a.LocationKey == nil:
			return false
		case b.LocationKey == nil:
			return true
		case *a.LocationKey != *b.LocationKey:
			return *a.LocationKey < *b.LocationKey
		}
		return a.ID < b.ID
	})
}

// Metadata describes the run.
func (r *Result) Metadata() models.Metadata {
	return models.Metadata{
		Date:             FormatISO(r.Date),
		CountSources:     len(r.Sources),
		CountAnnotations: len(r.Annotations),
		Version:          models.Version,
	}
}

// SourcesDocument returns the nested sources tree.
func (r *Result) SourcesDocument() models.SourcesDocument {
	doc := models.SourcesDocument{
		Sources:  make([]models.SourceRecord, 0, len(r.Sources)),
		Metadata: r.Metadata(),
	}
	for _, s := range r.Sources {
		doc.Sources = append(doc.Sources, s.Record())
	}
	return doc
}

// AnnotationsDocument returns the flat annotation list.
func (r *Result) AnnotationsDocument() models.AnnotationsDocument {
	doc := models.AnnotationsDocument{
		Annotations: make([]models.AnnotationRecord, 0, len(r.Annotations)),
		Metadata:    r.Metadata(),
	}
	for _, a := range r.Annotations {
		doc.Annotations = append(doc.Annotations, a.Record(true))
	}
	return doc
}
