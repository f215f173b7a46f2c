package cache

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const previewDir = ".previews"

// Manager handles the scratch directory holding downloaded booklets.
//
// Layout:
//
//	<baseDir>/<last segment of remote url>
//	<baseDir>/.previews/<file name>.png
//	<baseDir>/index.html
type Manager struct {
	baseDir string
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir returns the cache root.
func (m *Manager) Dir() string {
	return m.baseDir
}

// LocalPath returns the deterministic local path for a remote document.
// The name is the URL's final path segment; there is no partitioning, so
// two URLs ending in the same segment share a path. The second return is
// false when the URL has no usable final segment, or when the segment
// names one of the cache's own files.
func (m *Manager) LocalPath(u *url.URL) (string, bool) {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	if reserved(name) {
		return "", false
	}
	return filepath.Join(m.baseDir, name), true
}

// reserved reports whether name would clash with the preview directory,
// the gallery page or an in-flight temp file. Case is ignored so the
// check also holds on case-insensitive file systems.
func reserved(name string) bool {
	return strings.EqualFold(name, previewDir) ||
		strings.EqualFold(name, indexFile) ||
		isTemp(strings.ToLower(name))
}

// PreviewPath returns where the preview for a local document is stored.
// The full file name is kept so doc.pdf and doc.PDF get distinct previews.
func (m *Manager) PreviewPath(localPath string) string {
	return filepath.Join(m.baseDir, previewDir, filepath.Base(localPath)+".png")
}

// Exists reports whether a regular file exists at path.
func (m *Manager) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// EnsureDir creates the cache root and the preview directory.
func (m *Manager) EnsureDir() error {
	return os.MkdirAll(filepath.Join(m.baseDir, previewDir), 0750)
}

// Remove deletes a cached document and its preview if they exist.
func (m *Manager) Remove(localPath string) error {
	for _, p := range []string{localPath, m.PreviewPath(localPath)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Usage reports the number of cached documents and their total size.
// Previews and in-flight temp files are not counted.
func (m *Manager) Usage() (count int, size int64, err error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || isTemp(e.Name()) || e.Name() == indexFile {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	return count, size, nil
}

// Clear removes the whole cache directory.
func (m *Manager) Clear() error {
	if _, err := os.Stat(m.baseDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.RemoveAll(m.baseDir)
}

// Files lists cached document paths, skipping previews and temp files.
func (m *Manager) Files() ([]string, error) {
	var out []string
	err := filepath.WalkDir(m.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != m.baseDir {
				return fs.SkipDir
			}
			return nil
		}
		if isTemp(d.Name()) || d.Name() == indexFile {
			return nil
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func isTemp(name string) bool {
	return strings.HasSuffix(name, tmpSuffix)
}
