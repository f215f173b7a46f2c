package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const snippetWidth = 80

// Match is one line containing the query.
type Match struct {
	Page    int    `json:"page"` // 1-based
	Line    int    `json:"line"` // 1-based within the page
	Snippet string `json:"snippet"`
}

// Extractor returns the text of each page of a document.
type Extractor interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// PopplerExtractor runs pdftotext.
type PopplerExtractor struct {
	Command string
}

// Pages extracts text and splits it on the form feeds pdftotext emits
// between pages.
func (p PopplerExtractor) Pages(ctx context.Context, path string) ([]string, error) {
	name := p.Command
	if name == "" {
		name = "pdftotext"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found: install poppler", name)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-enc", "UTF-8", "-layout", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return SplitPages(stdout.String()), nil
}

// SplitPages splits pdftotext output into pages. The trailing form feed
// after the last page does not produce an extra page.
func SplitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}

// Search extracts the document's text and returns every line matching query.
func Search(ctx context.Context, ex Extractor, path, query string) ([]Match, error) {
	pages, err := ex.Pages(ctx, path)
	if err != nil {
		return nil, err
	}
	return Find(pages, query), nil
}

// Find matches query against each line, ignoring case and Unicode
// compatibility differences (ligatures, full-width forms).
func Find(pages []string, query string) []Match {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Match
	for pi, page := range pages {
		for li, line := range strings.Split(page, "\n") {
			if strings.Contains(fold(line), q) {
				out = append(out, Match{
					Page:    pi + 1,
					Line:    li + 1,
					Snippet: snippet(line),
				})
			}
		}
	}
	return out
}

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(norm.NFKC.String(s))
}

func snippet(line string) string {
	s := strings.Join(strings.Fields(line), " ")
	r := []rune(s)
	if len(r) <= snippetWidth {
		return s
	}
	return string(r[:snippetWidth-1]) + "…"
}
