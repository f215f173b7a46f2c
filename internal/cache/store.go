package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/booklets/internal/util"
)

const tmpSuffix = ".part"

// Store writes r to destPath, verifying the sha256 checksum before the
// file becomes visible if expectedSHA256 is non-empty. Data lands in a
// uniquely named temp file in the same directory and is renamed into
// place, so destPath is either fully written or absent.
func (m *Manager) Store(destPath string, r io.Reader, expectedSHA256 string) error {
	if err := m.EnsureDir(); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*"+tmpSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	hr := util.NewHashingReader(r)
	if _, err := io.Copy(f, hr); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if expectedSHA256 != "" {
		if err := checkSum(destPath, expectedSHA256, hr.SHA256()); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("moving into cache: %w", err)
	}
	return nil
}
