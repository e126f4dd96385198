// Package risk defines the three-level triage risk scale.
package risk

import (
	"fmt"
	"strings"
)

// Level is a triage risk level. Only Low, Medium and High are valid.
type Level string

// Risk levels in ascending order of severity.
const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Levels lists the valid levels in ascending order.
func Levels() []Level {
	return []Level{Low, Medium, High}
}

// IsValid checks if the level is one of the canonical values.
func (l Level) IsValid() bool {
	return l == Low || l == Medium || l == High
}

// Rank orders levels: Low < Medium < High. Invalid levels rank as Low.
func (l Level) Rank() int {
	switch l {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}

// Parse strictly maps s (case-insensitive, trimmed) to a Level.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// Coerce maps s to a Level and substitutes Medium for anything unrecognized.
func Coerce(s string) Level {
	l, err := Parse(s)
	if err != nil {
		return Medium
	}
	return l
}

// Max returns the more severe of a and b.
func Max(a, b Level) Level {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// UnmarshalText implements encoding.TextUnmarshaler with strict parsing,
// so malformed source data fails to decode.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
