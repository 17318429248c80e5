package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/hlts/internal/apperr"
)

var (
	cfiWrapperRe = regexp.MustCompile(`^epubcfi\((.*)\)$`)
	// Bracketed assertions such as [part01] or [;s=b]; ^ escapes the next rune.
	cfiLabelRe = regexp.MustCompile(`\[(?:\^.|[^\]^])*\]`)
	cfiPathRe  = regexp.MustCompile(`^((?:/\d+)*)(?::(\d+))?$`)
)

// keyWidth is the zero-padded width of every component of a location key.
const keyWidth = 4

// NormalizeCFI converts an EPUB CFI into a fixed-width key that sorts like
// the CFI's numeric components, e.g.
//
//	epubcfi(/6/20[part01]!/4/182,/1:0,/3:23) -> 0006.0020.0004.0182.0001.0000
//
// The key is built from the steps before the range, then the steps and the
// character offset of the range start. The range end only has to be well
// formed. ok is false when cfi is empty; a CFI that does not follow the
// grammar returns an error wrapping apperr.ErrMalformedLocation.
func NormalizeCFI(cfi string) (key string, ok bool, err error) {
	cfi = strings.TrimSpace(cfi)
	if cfi == "" {
		return "", false, nil
	}

	m := cfiWrapperRe.FindStringSubmatch(cfi)
	if m == nil {
		return "", false, malformed(cfi, "missing epubcfi() wrapper")
	}
	body := cfiLabelRe.ReplaceAllString(m[1], "")

	parts := strings.Split(body, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return "", false, malformed(cfi, "expected a path or a path with start and end offsets")
	}
	isRange := len(parts) == 3

	var nums []int
	groups := strings.Split(parts[0], "!")
	for i, g := range groups {
		// Only a point CFI carries its character offset on the last group.
		withOffset := !isRange && i == len(groups)-1
		steps, offset, hasOffset, err := parsePath(g)
		if err != nil {
			return "", false, malformed(cfi, err.Error())
		}
		if len(steps) == 0 {
			return "", false, malformed(cfi, "empty path")
		}
		if hasOffset && !withOffset {
			return "", false, malformed(cfi, "character offset inside path")
		}
		nums = append(nums, steps...)
		if hasOffset {
			nums = append(nums, offset)
		}
	}

	if isRange {
		for i, p := range parts[1:] {
			steps, offset, hasOffset, err := parsePath(p)
			if err != nil {
				return "", false, malformed(cfi, err.Error())
			}
			if len(steps) == 0 && !hasOffset {
				return "", false, malformed(cfi, "empty range offset")
			}
			if i > 0 {
				continue
			}
			nums = append(nums, steps...)
			if hasOffset {
				nums = append(nums, offset)
			}
		}
	}

	fields := make([]string, len(nums))
	for i, n := range nums {
		fields[i] = fmt.Sprintf("%0*d", keyWidth, n)
	}
	return strings.Join(fields, "."), true, nil
}

// parsePath parses "/4/2/1:12" into its steps and optional character offset.
func parsePath(s string) (steps []int, offset int, hasOffset bool, err error) {
	m := cfiPathRe.FindStringSubmatch(s)
	if m == nil {
		return nil, 0, false, fmt.Errorf("invalid path %q", s)
	}
	if m[1] != "" {
		for _, field := range strings.Split(m[1][1:], "/") {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, 0, false, fmt.Errorf("invalid step %q", field)
			}
			steps = append(steps, n)
		}
	}
	if m[2] != "" {
		offset, err = strconv.Atoi(m[2])
		if err != nil {
			return nil, 0, false, fmt.Errorf("invalid offset %q", m[2])
		}
		hasOffset = true
	}
	return steps, offset, hasOffset, nil
}

func malformed(cfi, reason string) error {
	return fmt.Errorf("parser: cfi %q: %s: %w", cfi, reason, apperr.ErrMalformedLocation)
}
