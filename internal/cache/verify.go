package cache

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/util"
)

// Verify checks the cached document for e against the catalog checksum.
// The file is located from e.LocalPath, or derived from the remote url
// when the entry has not been annotated. It returns ErrNotCached when
// there is no file and nil when the entry carries no checksum. Corrupt
// content yields a *ChecksumError.
func (m *Manager) Verify(e catalog.Entry) error {
	local := e.LocalPath
	if local == "" {
		u, err := e.RemoteLocation()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		p, ok := m.LocalPath(u)
		if !ok {
			return fmt.Errorf("%w: %s has no file name", ErrInvalidReference, u)
		}
		local = p
	}
	if !m.Exists(local) {
		return fmt.Errorf("%s: %w", e.ID, ErrNotCached)
	}
	if e.Checksum.SHA256 == "" {
		return nil
	}
	got, err := util.SHA256File(local)
	if err != nil {
		return fmt.Errorf("computing checksum: %w", err)
	}
	return checkSum(local, e.Checksum.SHA256, got)
}

// checkSum compares hex digests case-insensitively.
func checkSum(path, want, got string) error {
	if !strings.EqualFold(want, got) {
		return &ChecksumError{Path: path, Want: want, Got: got}
	}
	return nil
}
