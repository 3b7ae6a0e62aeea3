package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when no GeoIP database was configured.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// CountryResolver maps an IP address to a country for contact notifications.
type CountryResolver interface {
	Country(ip string) (Country, error)
}

// Country is the subset of the GeoIP record shown in contact emails.
type Country struct {
	ISOCode string
	Name    string
}

// String renders "Name (CC)", or whichever half is known.
func (c Country) String() string {
	switch {
	case c.Name != "" && c.ISOCode != "":
		return fmt.Sprintf("%s (%s)", c.Name, c.ISOCode)
	case c.Name != "":
		return c.Name
	default:
		return c.ISOCode
	}
}

// Resolver provides country lookups backed by a MaxMind GeoIP2/GeoLite2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the database at path. An empty path yields a resolver
// that always returns ErrUnavailable.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return &Resolver{}, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Country looks up ip. Private and loopback addresses resolve to an empty Country.
func (r *Resolver) Country(ip string) (Country, error) {
	if r == nil || r.reader == nil {
		return Country{}, ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return Country{}, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return Country{}, nil
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return Country{}, fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return Country{}, nil
	}
	return Country{ISOCode: record.Country.IsoCode, Name: record.Country.Names["en"]}, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

var _ CountryResolver = (*Resolver)(nil)
