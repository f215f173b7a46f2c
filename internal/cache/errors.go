package cache

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Failure classes reported by the Acquirer. None of them escape
// EnsureAvailable; they reach logs and observers wrapped with context.
var (
	// ErrInvalidReference means the entry is missing or its remote url is unusable.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrTransfer means the download or the move into the cache failed.
	ErrTransfer = errors.New("transfer failed")
	// ErrPreview means preview generation failed.
	ErrPreview = errors.New("preview failed")
)

// ErrNotCached is returned by Verify when the booklet has no local file.
var ErrNotCached = errors.New("not cached")

// ChecksumError reports document content that does not match the sha256
// recorded in the catalog.
type ChecksumError struct {
	Path string
	Want string
	Got  string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", filepath.Base(e.Path), e.Want, e.Got)
}

// StatusError is returned by HTTPFetcher for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
