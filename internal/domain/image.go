package domain

import (
	"strings"
	"time"
)

// Image is one gallery photo. URL is either a site-relative local path
// (/images/gallery/...) or an absolute object store URL.
type Image struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Alt       string    `json:"alt"`
	Category  string    `json:"category"`
	URL       string    `json:"url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// IsRemote reports whether the URL is absolute http(s).
func (i Image) IsRemote() bool {
	return IsRemoteURL(i.URL)
}

// IsRemoteURL reports whether u has an http or https scheme.
func IsRemoteURL(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ImageQuery filters a gallery page. Categories holds every stored spelling
// to match; empty means all categories.
type ImageQuery struct {
	Categories []string
	Search     string
	Limit      int
	Offset     int
}

// CategoryCount is a stored category label and how many rows carry it.
type CategoryCount struct {
	Category string
	Count    int
}

// ImagePatch carries editable image fields; nil leaves the column untouched.
type ImagePatch struct {
	Alt      *string
	Category *string
	URL      *string
}
