// Package money parses the free-form dollar amounts typed into the contact
// form and pasted into donation CSV exports.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotNumeric is returned when nothing numeric is left after stripping
	// currency decorations.
	ErrNotNumeric = errors.New("amount is not numeric")
	ErrOutOfRange = errors.New("amount out of range")
)

// MaxCents is the largest magnitude ToCents converts. Floats stay exact up to 2^53.
const MaxCents = 1 << 53

var stripper = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "", " ", "", " ", "", "USD", "", "usd", "")

// ParseAmount normalizes "$1,234.56" style input to 1234.56.
func ParseAmount(s string) (float64, error) {
	cleaned := stripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

// ToCents rounds a dollar amount to whole cents.
func ToCents(v float64) (int64, error) {
	c := math.Round(v * 100)
	if math.IsNaN(c) || math.Abs(c) > MaxCents {
		return 0, ErrOutOfRange
	}
	return int64(c), nil
}

// FromCents converts cents back to dollars.
func FromCents(c int64) float64 {
	return float64(c) / 100
}

// ParseCents is ParseAmount followed by ToCents.
func ParseCents(s string) (int64, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return ToCents(v)
}
