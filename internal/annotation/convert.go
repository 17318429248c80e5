package annotation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/starford/hlts/internal/apperr"
)

// appleEpochOffset is the number of seconds between the Unix epoch and
// 2001-01-01T00:00:00Z, the reference date of Apple timestamps.
const appleEpochOffset = 978307200.0

// maxUnixSeconds is 10000-01-01T00:00:00Z; later dates have no ISO form.
const maxUnixSeconds = 253402300800.0

const (
	isoLayout      = "2006-01-02T15:04:05"
	isoMicroLayout = "2006-01-02T15:04:05.000000"
)

var styles = [...]string{"underline", "green", "blue", "yellow", "pink", "purple"}

// ConvertDate converts an Apple timestamp (seconds since 2001-01-01 UTC) to
// an ISO-8601 UTC date-time without zone suffix. v may be any numeric type or
// a numeric string, as SQLite hands it over.
func ConvertDate(v any) (string, error) {
	secs, err := toFloat(v)
	if err != nil {
		return "", fmt.Errorf("annotation: date %v: %w: %w", v, apperr.ErrInvalidTimestamp, err)
	}
	unix := secs + appleEpochOffset
	if math.IsNaN(unix) || math.IsInf(unix, 0) || unix <= -maxUnixSeconds || unix >= maxUnixSeconds {
		return "", fmt.Errorf("annotation: date %v out of range: %w", v, apperr.ErrInvalidTimestamp)
	}

	whole := math.Floor(unix)
	micros := math.Round((unix - whole) * 1e6)
	if micros >= 1e6 {
		whole++
		micros = 0
	}
	t := time.Unix(int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
	if t.Year() < 1 {
		return "", fmt.Errorf("annotation: date %v out of range: %w", v, apperr.ErrInvalidTimestamp)
	}
	return FormatISO(t), nil
}

// FormatISO formats t in UTC like Python's isoformat: microseconds are only
// written when non-zero.
func FormatISO(t time.Time) string {
	t = t.UTC().Round(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(isoLayout)
	}
	return t.Format(isoMicroLayout)
}

// StyleName maps an Apple Books highlight style code to its color name.
// Unknown codes report false.
func StyleName(code int) (string, bool) {
	if code < 0 || code >= len(styles) {
		return "", false
	}
	return styles[code], true
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing value")
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// styleCode extracts an integral style code from a dynamically typed column.
func styleCode(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<31 {
			return int(n), true
		}
	}
	return 0, false
}
