package cache

import "github.com/blackwell-systems/booklets/internal/catalog"

// Annotate returns copies of entries with LocalPath and Preview filled in
// from what is already on disk. It is for read-only views of the cache;
// the acquisition session records state only through EnsureAvailable.
func (m *Manager) Annotate(entries []catalog.Entry) []catalog.Entry {
	out := make([]catalog.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		u, err := e.RemoteLocation()
		if err != nil {
			continue
		}
		local, ok := m.LocalPath(u)
		if !ok || !m.Exists(local) {
			continue
		}
		out[i].LocalPath = local
		if p := m.PreviewPath(local); m.Exists(p) {
			out[i].Preview = &catalog.Preview{Path: p}
		}
	}
	return out
}
