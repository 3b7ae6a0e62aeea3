package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNotConfigured is returned by Disabled for every write.
var ErrNotConfigured = errors.New("storage: object store not configured")

// ObjectStore is the managed blob store gallery images migrate to.
type ObjectStore interface {
	// Put uploads data under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL is the public URL key would be served at.
	URL(key string) string
	// Owns reports whether rawURL points into this store.
	Owns(rawURL string) bool
	// KeyFromURL returns the object key for an owned URL.
	KeyFromURL(rawURL string) (string, bool)
}

// Disabled stands in when no bucket is configured. It owns no URLs.
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Exists(context.Context, string) (bool, error) { return false, ErrNotConfigured }
func (Disabled) Delete(context.Context, string) error         { return ErrNotConfigured }
func (Disabled) URL(string) string                            { return "" }
func (Disabled) Owns(string) bool                             { return false }
func (Disabled) KeyFromURL(string) (string, bool)             { return "", false }

// publicBase splits a public base URL into a host and a path prefix.
type publicBase struct {
	raw    string
	host   string
	prefix string
}

func parsePublicBase(raw string) (publicBase, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return publicBase{}, err
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return publicBase{}, errors.New("storage: public base url must be absolute http(s)")
	}
	return publicBase{raw: raw, host: strings.ToLower(u.Host), prefix: strings.TrimRight(u.Path, "/")}, nil
}

func (b publicBase) url(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.raw + "/" + strings.Join(segments, "/")
}

func (b publicBase) key(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.EqualFold(u.Host, b.host) {
		return "", false
	}
	p := u.Path
	if b.prefix != "" {
		if !strings.HasPrefix(p, b.prefix+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, b.prefix)
	}
	key := strings.TrimLeft(p, "/")
	if key == "" {
		return "", false
	}
	return key, true
}
