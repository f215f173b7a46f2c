package catalog

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Entry is one downloadable booklet in the catalog.
//
// LocalPath and Preview are session state: they are never read from or
// written to the seed file.
type Entry struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	RemoteURL string   `yaml:"remote_url,omitempty" json:"remote_url,omitempty"`
	Rating    float64  `yaml:"rating" json:"rating"`
	Tags      []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Checksum  Checksum `yaml:"checksum,omitempty" json:"checksum,omitempty"`

	LocalPath string   `yaml:"-" json:"local_path,omitempty"`
	Preview   *Preview `yaml:"-" json:"preview,omitempty"`
}

// Checksum holds content hashes.
type Checksum struct {
	SHA256 string `yaml:"sha256,omitempty" json:"sha256,omitempty"`
}

// Preview is a rendered bitmap of a booklet's first page.
type Preview struct {
	Path   string  `json:"path"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

// RatingString formats the rating with one decimal, as shown on cards.
func (e Entry) RatingString() string {
	return fmt.Sprintf("%.1f", e.Rating)
}

// Stars renders the rating as five filled or empty stars, rounded to
// the nearest whole star.
func (e Entry) Stars() string {
	n := int(math.Round(e.Rating))
	n = max(0, min(5, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// Acquired reports whether the booklet is present on local storage.
func (e Entry) Acquired() bool {
	return e.LocalPath != ""
}

// HasPreview reports whether a preview image has been derived.
func (e Entry) HasPreview() bool {
	return e.Preview != nil
}

// RemoteLocation parses RemoteURL. It fails for empty URLs and for URLs
// without a scheme or host.
func (e Entry) RemoteLocation() (*url.URL, error) {
	if e.RemoteURL == "" {
		return nil, fmt.Errorf("entry %q has no remote url", e.ID)
	}
	u, err := url.Parse(e.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.ID, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("entry %q: remote url %q is not absolute", e.ID, e.RemoteURL)
	}
	return u, nil
}

// clone returns a copy that shares nothing mutable with e.
func (e Entry) clone() Entry {
	if e.Tags != nil {
		e.Tags = append([]string(nil), e.Tags...)
	}
	if e.Preview != nil {
		p := *e.Preview
		e.Preview = &p
	}
	return e
}

// merge applies next on top of prev while keeping acquisition state
// monotonic: LocalPath and Preview are never unset once present, and a
// preview without a local document is dropped.
func merge(prev, next Entry) Entry {
	next.ID = prev.ID
	if next.LocalPath == "" {
		next.LocalPath = prev.LocalPath
	}
	if next.Preview == nil {
		next.Preview = prev.Preview
	}
	if next.LocalPath == "" {
		next.Preview = nil
	}
	return next
}
