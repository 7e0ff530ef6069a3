package pricing

import (
	"errors"
	"testing"
)

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2h 30m", 150},
		{"90", 90},
		{"1h", 60},
		{"45m", 45},
		{"0", 0},
		{"  3h   5m ", 185},
		{"2h30m", 150},
		{"1H 15M", 75},
		{"0h 0m", 0},
	}

	for _, tt := range tests {
		got, err := ParseMinutes(tt.in)
		if err != nil {
			t.Fatalf("ParseMinutes(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMinutes_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "h", "m", "1.5h", "30m 2h", "-5", "2 hours", "1h-30m",
		"153722867280912931h", "9223372036854775807h 1m", "1h 9223372036854775807m",
	} {
		got, err := ParseMinutes(in)
		if err == nil {
			t.Fatalf("ParseMinutes(%q) = %d, expected error", in, got)
		}
		if got != 0 {
			t.Fatalf("ParseMinutes(%q) = %d alongside an error, want 0", in, got)
		}

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("ParseMinutes(%q) error %T is not *ParseError", in, err)
		}
		if parseErr.Input != in {
			t.Fatalf("ParseError.Input = %q, want %q", parseErr.Input, in)
		}
	}
}
