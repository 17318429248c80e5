package annotation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/hlts/internal/models"
	"github.com/starford/hlts/internal/parser"
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
)

// step fills one part of an annotation from its raw row. A returned error
// aborts the record; field-level problems are logged and leave the field nil.
type step struct {
	name  string
	apply func(b *Builder, raw models.RawAnnotation, a *models.Annotation) error
}

// steps run in order for every record.
var steps = []step{
	{"identity", (*Builder).buildIdentity},
	{"text", (*Builder).buildText},
	{"notes", (*Builder).buildNotes},
	{"location", (*Builder).buildLocation},
	{"dates", (*Builder).buildDates},
	{"style", (*Builder).buildStyle},
}

// Builder converts raw annotation rows into normalized annotations.
type Builder struct {
	cfg         Config
	tags        *parser.Tokenizer
	collections *parser.Tokenizer
	logger      *slog.Logger
}

// NewBuilder validates cfg and prepares the marker tokenizers. Any error wraps
// apperr.ErrConfigurationInvalid.
func NewBuilder(cfg Config, logger *slog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tags, err := parser.NewTokenizer(cfg.TagPrefix)
	if err != nil {
		return nil, err
	}
	collections, err := parser.NewTokenizer(cfg.CollectionPrefix)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, tags: tags, collections: collections, logger: logger}, nil
}

// Build normalizes a single raw row.
func (b *Builder) Build(raw models.RawAnnotation) (a *models.Annotation, err error) {
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("annotation %s: unexpected failure: %v", raw.ID, r)
		}
	}()

	a = &models.Annotation{}
	for _, s := range steps {
		if err := s.apply(b, raw, a); err != nil {
			return nil, fmt.Errorf("annotation %s: %s: %w", raw.ID, s.name, err)
		}
	}
	return a, nil
}

// BuildAll normalizes rows in order. A row that cannot be built is skipped and
// reported in errs; the remaining rows are still built.
func (b *Builder) BuildAll(raws []models.RawAnnotation) (out []*models.Annotation, errs []error) {
	out = make([]*models.Annotation, 0, len(raws))
	for _, raw := range raws {
		a, err := b.Build(raw)
		if err != nil {
			b.logger.Warn("annotation: skipped", slog.String("id", raw.ID), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		out = append(out, a)
	}
	return out, errs
}

func (b *Builder) buildIdentity(raw models.RawAnnotation, a *models.Annotation) error {
	if raw.ID == "" {
		return errors.New("missing id")
	}
	a.ID = raw.ID
	a.SourceID = raw.SourceID
	return nil
}

func (b *Builder) buildText(raw models.RawAnnotation, a *models.Annotation) error {
	a.Text = Paragraphs(deref(raw.Text))
	return nil
}

func (b *Builder) buildNotes(raw models.RawAnnotation, a *models.Annotation) error {
	tags, rest := b.tags.Extract(deref(raw.Notes))
	collections, rest := b.collections.Extract(rest)

	for i, c := range collections {
		if c == b.cfg.StarredCollection {
			collections = append(collections[:i], collections[i+1:]...)
			a.IsStarred = true
			break
		}
	}

	a.Tags = tags
	a.Collections = collections
	a.Notes = strings.TrimSpace(rest)
	return nil
}

func (b *Builder) buildLocation(raw models.RawAnnotation, a *models.Annotation) error {
	cfi := deref(raw.Location)
	if cfi == "" {
		return nil
	}
	a.Location = &cfi

	key, ok, err := parser.NormalizeCFI(cfi)
	if err != nil {
		b.logger.Warn("annotation: malformed location",
			slog.String("id", raw.ID),
			slog.String("error", err.Error()))
		return nil
	}
	if ok {
		a.LocationKey = &key
	}
	return nil
}

func (b *Builder) buildDates(raw models.RawAnnotation, a *models.Annotation) error {
	a.DateCreated = b.date(raw.ID, "date_created", raw.DateCreated)
	a.DateModified = b.date(raw.ID, "date_modified", raw.DateModified)
	return nil
}

func (b *Builder) date(id, field string, v any) *string {
	s, err := ConvertDate(v)
	if err != nil {
		b.logger.Warn("annotation: invalid date",
			slog.String("id", id),
			slog.String("field", field),
			slog.String("error", err.Error()))
		return nil
	}
	return &s
}

func (b *Builder) buildStyle(raw models.RawAnnotation, a *models.Annotation) error {
	code, ok := styleCode(raw.Style)
	if !ok {
		return nil
	}
	if name, ok := StyleName(code); ok {
		a.Style = &name
	}
	return nil
}

// Paragraphs normalizes typographic quotes to ASCII and splits text into
// trimmed, non-empty lines.
func Paragraphs(text string) []string {
	out := []string{}
	for _, line := range strings.Split(quoteReplacer.Replace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
