package cache

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
)

const indexFile = "index.html"

// IndexPath returns where WriteIndex puts the gallery.
func (m *Manager) IndexPath() string {
	return filepath.Join(m.baseDir, indexFile)
}

// WriteIndex writes an index.html gallery of the acquired entries into
// the cache directory. Entries without a local file are skipped. Links
// and preview images are relative, so the page keeps working if the cache
// directory moves.
func (m *Manager) WriteIndex(entries []catalog.Entry) (int, error) {
	var cards []catalog.Entry
	for _, e := range entries {
		if e.Acquired() {
			cards = append(cards, e)
		}
	}
	if err := m.EnsureDir(); err != nil {
		return 0, err
	}
	page := renderIndex(m.baseDir, cards)
	if err := os.WriteFile(m.IndexPath(), []byte(page), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", indexFile, err)
	}
	return len(cards), nil
}

func renderIndex(baseDir string, entries []catalog.Entry) string {
	var s strings.Builder

	tagCount := map[string]int{}
	for _, e := range entries {
		for _, t := range e.Tags {
			tagCount[t]++
		}
	}
	tags := make([]string, 0, len(tagCount))
	for t := range tagCount {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	s.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Booklets</title>
    <style>
        :root { --accent: #fb6820; --card: #1c2829; --border: #1e3a3c; }
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #1a1a1a; color: #e0e0e0; padding: 24px; }
        header { display: flex; gap: 16px; align-items: center; margin-bottom: 20px; flex-wrap: wrap; }
        h1 { color: var(--accent); font-size: 1.6em; }
        #search { flex: 1; min-width: 200px; padding: 8px 12px; background: #111; color: inherit; border: 1px solid var(--border); border-radius: 6px; }
        .tag-filter { cursor: pointer; padding: 2px 10px; border: 1px solid var(--border); border-radius: 12px; font-size: 0.85em; }
        .tag-filter.active { background: var(--accent); color: #111; }
        .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 16px; }
        .card { display: block; background: var(--card); border: 1px solid var(--border); border-radius: 8px; padding: 10px; color: inherit; text-decoration: none; }
        .card:hover { border-color: var(--accent); }
        .preview { height: 200px; display: flex; align-items: center; justify-content: center; background: #fff; border-radius: 4px; margin-bottom: 8px; overflow: hidden; }
        .preview img { max-width: 100%; max-height: 100%; }
        .preview.none { background: #222; color: #666; font-size: 0.9em; }
        .title { font-weight: 600; }
        .rating { color: var(--accent); font-size: 0.9em; }
        .tags span { font-size: 0.75em; color: #8ab; margin-right: 4px; }
        #empty { display: none; color: #888; margin-top: 40px; text-align: center; }
    </style>
</head>
<body>
    <header>
        <h1>Booklets</h1>
        <input id="search" type="search" placeholder="Search title or tag">
`)
	for _, t := range tags {
		fmt.Fprintf(&s, "        <span class=\"tag-filter\" data-tag=\"%s\">%s (%d)</span>\n",
			html.EscapeString(t), html.EscapeString(t), tagCount[t])
	}
	s.WriteString("    </header>\n    <main class=\"grid\" id=\"grid\">\n")

	for _, e := range entries {
		renderCard(&s, baseDir, e)
	}

	s.WriteString(`    </main>
    <p id="empty">No booklets match.</p>
    <script>
        const search = document.getElementById('search');
        const active = new Set();
        document.querySelectorAll('.tag-filter').forEach(el => {
            el.addEventListener('click', () => {
                const tag = el.dataset.tag;
                if (active.has(tag)) { active.delete(tag); el.classList.remove('active'); }
                else { active.add(tag); el.classList.add('active'); }
                apply();
            });
        });
        search.addEventListener('input', apply);
        function apply() {
            const q = search.value.toLowerCase();
            let shown = 0;
            document.querySelectorAll('.card').forEach(card => {
                const tags = card.dataset.tags ? card.dataset.tags.split(',') : [];
                const ok = (q === '' || card.textContent.toLowerCase().includes(q)) &&
                    [...active].every(t => tags.includes(t));
                card.style.display = ok ? 'block' : 'none';
                if (ok) shown++;
            });
            document.getElementById('empty').style.display = shown === 0 ? 'block' : 'none';
        }
    </script>
</body>
</html>
`)
	return s.String()
}

func renderCard(s *strings.Builder, baseDir string, e catalog.Entry) {
	fmt.Fprintf(s, "        <a class=\"card\" href=\"%s\" data-id=\"%s\" data-tags=\"%s\">\n",
		html.EscapeString(relLink(baseDir, e.LocalPath)),
		html.EscapeString(e.ID),
		html.EscapeString(strings.Join(e.Tags, ",")),
	)
	if e.HasPreview() {
		fmt.Fprintf(s, "            <div class=\"preview\"><img src=\"%s\" alt=\"\"></div>\n",
			html.EscapeString(relLink(baseDir, e.Preview.Path)))
	} else {
		s.WriteString("            <div class=\"preview none\">no preview</div>\n")
	}
	fmt.Fprintf(s, "            <div class=\"title\">%s</div>\n", html.EscapeString(e.Title))
	fmt.Fprintf(s, "            <div class=\"rating\">%s %s</div>\n", e.Stars(), e.RatingString())
	if len(e.Tags) > 0 {
		s.WriteString("            <div class=\"tags\">")
		for _, t := range e.Tags {
			fmt.Fprintf(s, "<span>#%s</span>", html.EscapeString(t))
		}
		s.WriteString("</div>\n")
	}
	s.WriteString("        </a>\n")
}

// relLink makes path relative to dir, falling back to a file:// URL for
// paths outside it.
func relLink(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "file://" + filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
