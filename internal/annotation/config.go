// Package annotation turns raw Apple Books rows into normalized annotations
// and groups them under their sources.
package annotation

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hlts/internal/apperr"
)

// Config holds the marker settings used while building annotations.
type Config struct {
	TagPrefix         string `yaml:"tag_prefix"`
	CollectionPrefix  string `yaml:"collection_prefix"`
	StarredCollection string `yaml:"starred_collection"`
}

// DefaultConfig returns the marker settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		TagPrefix:         "#",
		CollectionPrefix:  "@",
		StarredCollection: "star",
	}
}

// Validate validates the marker settings. The returned error wraps
// apperr.ErrConfigurationInvalid.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.TagPrefix, validation.Required, validation.By(singleSymbol)),
		validation.Field(&c.CollectionPrefix, validation.Required, validation.By(singleSymbol),
			validation.NotIn(c.TagPrefix).Error("must differ from tag_prefix")),
		validation.Field(&c.StarredCollection, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("annotations: %w: %w", apperr.ErrConfigurationInvalid, err)
	}
	return nil
}

func singleSymbol(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return errors.New("must be a single character")
	}
	if unicode.IsSpace(r) || !unicode.IsPrint(r) {
		return errors.New("must be a printable, non-whitespace character")
	}
	return nil
}
