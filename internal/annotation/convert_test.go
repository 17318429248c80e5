package annotation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/starford/hlts/internal/apperr"
)

func TestConvertDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0.0, "2001-01-01T00:00:00"},
		{31536000.0, "2002-01-01T00:00:00"},
		{int64(86400), "2001-01-02T00:00:00"},
		{-978307200.0, "1970-01-01T00:00:00"},
		{0.5, "2001-01-01T00:00:00.500000"},
		{"3600", "2001-01-01T01:00:00"},
		{[]byte("60.25"), "2001-01-01T00:01:00.250000"},
		{599529600.123456, "2020-01-01T00:00:00.123456"},
	}
	for _, tt := range tests {
		got, err := ConvertDate(tt.in)
		if err != nil {
			t.Errorf("ConvertDate(%v): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertDate_Invalid(t *testing.T) {
	for _, in := range []any{nil, "soon", true, math.NaN(), math.Inf(1), 1e20} {
		if _, err := ConvertDate(in); !errors.Is(err, apperr.ErrInvalidTimestamp) {
			t.Errorf("ConvertDate(%v) err = %v, want ErrInvalidTimestamp", in, err)
		}
	}
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 3, 0, time.FixedZone("X", 3600))
	if got := FormatISO(ts); got != "2024-03-09T06:05:03" {
		t.Errorf("FormatISO = %q", got)
	}
	ts = ts.Add(1500 * time.Microsecond)
	if got := FormatISO(ts); got != "2024-03-09T06:05:03.001500" {
		t.Errorf("FormatISO = %q", got)
	}
}

func TestStyleName(t *testing.T) {
	want := []string{"underline", "green", "blue", "yellow", "pink", "purple"}
	for code, name := range want {
		got, ok := StyleName(code)
		if !ok || got != name {
			t.Errorf("StyleName(%d) = %q, %v; want %q", code, got, ok, name)
		}
	}
	for _, code := range []int{-1, 6, 99} {
		if got, ok := StyleName(code); ok {
			t.Errorf("StyleName(%d) = %q, want unknown", code, got)
		}
	}
}

func TestStyleCode(t *testing.T) {
	tests := []struct {
		in     any
		want   int
		wantOK bool
	}{
		{int64(3), 3, true},
		{3.0, 3, true},
		{3.5, 0, false},
		{"3", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := styleCode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("styleCode(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
