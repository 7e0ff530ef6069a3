package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var compoundDuration = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)

// ParseError reports a time value that could not be read as minutes.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse time %q: %s", e.Input, e.Reason)
}

// ParseMinutes reads a bare number of minutes ("90") or a compound value of the
// shape "<H>h <M>m" where either part may be omitted ("2h 30m", "1h", "45m").
func ParseMinutes(s string) (int, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return 0, &ParseError{Input: s, Reason: "empty value"}
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		if minutes < 0 {
			return 0, &ParseError{Input: s, Reason: "negative minutes"}
		}
		return minutes, nil
	}

	match := compoundDuration.FindStringSubmatch(value)
	if match == nil || (match[1] == "" && match[2] == "") {
		return 0, &ParseError{Input: s, Reason: `expected minutes or "<H>h <M>m"`}
	}

	total := 0
	if match[1] != "" {
		hours, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "hours out of range"}
		}
		if hours > (math.MaxInt-59)/60 {
			return 0, &ParseError{Input: s, Reason: "hours out of range"}
		}
		total += hours * 60
	}
	if match[2] != "" {
		minutes, err := strconv.Atoi(match[2])
		if err != nil || minutes > math.MaxInt-total {
			return 0, &ParseError{Input: s, Reason: "minutes out of range"}
		}
		total += minutes
	}

	return total, nil
}
