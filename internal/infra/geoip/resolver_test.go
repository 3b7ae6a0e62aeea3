package geoip

import (
	"errors"
	"testing"
)

func TestResolverWithoutDatabase(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	if _, err := r.Country("203.0.113.5"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestCountryString(t *testing.T) {
	tests := []struct {
		in   Country
		want string
	}{
		{Country{ISOCode: "US", Name: "United States"}, "United States (US)"},
		{Country{Name: "Canada"}, "Canada"},
		{Country{ISOCode: "MX"}, "MX"},
		{Country{}, ""},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}
