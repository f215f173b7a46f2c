package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/config"
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/blackwell-systems/booklets/internal/wiki"
	"github.com/fatih/color"
)

// useTestConfig points the package globals at a temp cache and a catalog
// whose documents are served by srv.
func useTestConfig(t *testing.T, srvURL string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yml")
	catalogYAML := `- id: "a"
  title: "Alpha"
  rating: 4
  remote_url: "` + srvURL + `/docs/alpha.pdf"
- id: "b"
  title: "Broken"
  rating: 2
  remote_url: "` + srvURL + `/docs/missing.pdf"
- id: "c"
  title: "No source"
  rating: 3
`
	if err := os.WriteFile(catalogPath, []byte(catalogYAML), 0600); err != nil {
		t.Fatal(err)
	}

	prevCfg, prevCache, prevLogger := cfg, cacheMgr, logger
	t.Cleanup(func() { cfg, cacheMgr, logger = prevCfg, prevCache, prevLogger })

	cfg = &config.Config{
		CatalogPath: catalogPath,
		CacheDir:    filepath.Join(dir, "cache"),
		Preview: config.PreviewConfig{
			Width: 10, Height: 14, Scale: 1,
			Command: "booklets-test-no-such-renderer",
		},
		Download: config.DownloadConfig{Concurrency: 2},
	}
	cacheMgr = cache.New(cfg.CacheDir)
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/docs/alpha.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 alpha"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetAll(t *testing.T) {
	srv := pdfServer(t)
	useTestConfig(t, srv.URL)

	s, err := openSession(logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()

	failed, err := getAll(context.Background(), s, []string{"a", "b", "c", "zzz"}, 2)
	if err != nil {
		t.Fatalf("getAll: %v", err)
	}
	// b is a 404, c has no url, zzz does not exist. a downloads; its
	// preview fails, which still leaves the document usable.
	if failed != 3 {
		t.Errorf("failed = %d, want 3", failed)
	}

	data, err := os.ReadFile(filepath.Join(cfg.CacheDir, "alpha.pdf"))
	if err != nil {
		t.Fatalf("alpha.pdf not cached: %v", err)
	}
	if string(data) != "%PDF-1.4 alpha" {
		t.Errorf("cached content = %q", data)
	}

	s.acq.Wait()
	e, _ := s.store.Get("a")
	if e.LocalPath == "" {
		t.Error("entry a has no local path")
	}
	if e.Preview != nil {
		t.Error("entry a has a preview although rendering failed")
	}
	if b, _ := s.store.Get("b"); b.LocalPath != "" {
		t.Error("failed entry b has a local path")
	}
}

func TestGetAll_CancelledContext(t *testing.T) {
	srv := pdfServer(t)
	useTestConfig(t, srv.URL)

	s, err := openSession(logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := getAll(ctx, s, []string{"a"}, 1); err == nil {
		t.Error("expected context error")
	}
}

func TestCopyAcquired(t *testing.T) {
	srv := pdfServer(t)
	useTestConfig(t, srv.URL)

	s, err := openSession(logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()
	if _, err := getAll(context.Background(), s, []string{"a"}, 1); err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	if err := copyAcquired(s.store.Entries(), []string{"a", "b"}, dest); err != nil {
		t.Fatalf("copyAcquired: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "alpha.pdf")); err != nil {
		t.Errorf("alpha.pdf not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "missing.pdf")); err == nil {
		t.Error("copied a booklet that was never downloaded")
	}
}

func TestWaiters_ReleaseOnTerminalOnly(t *testing.T) {
	w := newWaiters()
	ch := w.expect("x")
	w.observe(cache.Event{ID: "x", Stage: cache.StageAcquired})
	select {
	case <-ch:
		t.Fatal("released on a non-terminal stage")
	default:
	}
	w.observe(cache.Event{ID: "y", Stage: cache.StagePreviewed})
	w.observe(cache.Event{ID: "x", Stage: cache.StagePreviewFailed})
	select {
	case ev := <-ch:
		if ev.Stage != cache.StagePreviewFailed {
			t.Errorf("stage = %s", ev.Stage)
		}
	default:
		t.Fatal("not released on terminal stage")
	}
}

func TestDedupe(t *testing.T) {
	got := strings.Join(dedupe([]string{"3", "1", "3", "2", "1"}), ",")
	if got != "3,1,2" {
		t.Errorf("dedupe = %s", got)
	}
}

func TestWriteFormatted_Unknown(t *testing.T) {
	handled, err := writeFormatted("xml", nil)
	if !handled || err == nil {
		t.Errorf("handled=%v err=%v, want handled with error", handled, err)
	}
	if handled, _ := writeFormatted("", nil); handled {
		t.Error("empty format should fall through to table output")
	}
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos, app string
		want      string
	}{
		{"darwin", "", "open"},
		{"windows", "", "cmd"},
		{"linux", "", "xdg-open"},
		{"linux", "zathura", "zathura"},
	}
	for _, tt := range tests {
		name, args := openCommand(tt.goos, "/c/a.pdf", tt.app)
		if name != tt.want {
			t.Errorf("openCommand(%s, %q) = %s, want %s", tt.goos, tt.app, name, tt.want)
		}
		if args[len(args)-1] != "/c/a.pdf" {
			t.Errorf("path not last argument: %v", args)
		}
	}
}

func TestHighlight(t *testing.T) {
	if got := highlight("no match here", "zzz"); got != "no match here" {
		t.Errorf("highlight changed unmatched text: %q", got)
	}
	if got := highlight("The Beanstalk", "beanstalk"); !strings.Contains(got, "Beanstalk") {
		t.Errorf("highlight lost text: %q", got)
	}
}

func TestConfirm(t *testing.T) {
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false} {
		if got := confirm(strings.NewReader(in)); got != want {
			t.Errorf("confirm(%q) = %v, want %v", in, got, want)
		}
	}
}

// captureStdout runs fn with os.Stdout redirected and colors disabled.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	prevOut, prevNoColor := os.Stdout, color.NoColor
	os.Stdout, color.NoColor = w, true
	defer func() { os.Stdout, color.NoColor = prevOut, prevNoColor }()

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()
	fn()
	_ = w.Close()
	return <-done
}

func TestPrintSummary_TitleWithPercent(t *testing.T) {
	out := captureStdout(t, func() {
		printSummary(&wiki.Summary{
			Title:   "100% Orange Juice",
			Extract: "Juice with 50% pulp.",
			PageURL: "https://en.wikipedia.org/wiki/100%25_Orange_Juice",
		})
	})
	for _, want := range []string{"100% Orange Juice\n", "50% pulp", "100%25_Orange_Juice"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "%!") {
		t.Errorf("output has a format error:\n%s", out)
	}
}

func TestHeader_FormatsOnce(t *testing.T) {
	out := captureStdout(t, func() { header("Booklet: %s", "50%") })
	if out != "Booklet: 50%\n" {
		t.Errorf("header output = %q", out)
	}
}

func TestEncodeFormatted_LocalStateInBothFormats(t *testing.T) {
	e := catalog.Entry{
		ID:        "7",
		Title:     "Bears",
		RemoteURL: "https://x/bears.pdf",
		LocalPath: "/c/bears.pdf",
		Preview:   &catalog.Preview{Path: "/c/.previews/bears.pdf.png", Width: 200, Height: 280, Scale: 2},
	}
	values := map[string]any{
		"list": entryViews([]catalog.Entry{e}),
		"info": entryInfo{Entry: e, LocalState: e.LocalPath, PreviewState: e.Preview, Size: 42},
	}
	for name, v := range values {
		for _, format := range []string{"json", "yaml"} {
			var buf strings.Builder
			if err := encodeFormatted(&buf, format, v); err != nil {
				t.Fatalf("%s %s: %v", name, format, err)
			}
			out := buf.String()
			for _, want := range []string{"local_path", "/c/bears.pdf", "preview", "bears.pdf.png", "remote_url"} {
				if !strings.Contains(out, want) {
					t.Errorf("%s %s output missing %q:\n%s", name, format, want, out)
				}
			}
		}
	}
}

func TestInitCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "catalog.yml")
	if err := initCatalog(path, false); err != nil {
		t.Fatalf("initCatalog: %v", err)
	}
	got, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(catalog.Seed()) {
		t.Errorf("wrote %d entries, want %d", len(got), len(catalog.Seed()))
	}

	if err := initCatalog(path, false); err == nil {
		t.Error("expected error when file exists without --force")
	}
	if err := initCatalog(path, true); err != nil {
		t.Errorf("initCatalog --force: %v", err)
	}
}

func TestExportCatalog_OmitsLocalState(t *testing.T) {
	entries := []catalog.Entry{{ID: "a", Title: "Alpha", Rating: 4, LocalPath: "/c/alpha.pdf"}}
	var buf strings.Builder
	if err := exportCatalog(&buf, entries); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "alpha.pdf") {
		t.Errorf("export leaked local state:\n%s", buf.String())
	}
	again, err := catalog.Parse([]byte(buf.String()))
	if err != nil || len(again) != 1 || again[0].Title != "Alpha" {
		t.Errorf("re-Parse = %+v, %v", again, err)
	}
}

func TestVerifyEntries(t *testing.T) {
	m := cache.New(t.TempDir())
	for _, name := range []string{"good.pdf", "bad.pdf", "plain.pdf"} {
		if err := m.Store(filepath.Join(m.Dir(), name), strings.NewReader("%PDF"), ""); err != nil {
			t.Fatal(err)
		}
	}
	good, err := util.SHA256Reader(strings.NewReader("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	entries := m.Annotate([]catalog.Entry{
		{ID: "good", RemoteURL: "https://x/good.pdf", Checksum: catalog.Checksum{SHA256: good}},
		{ID: "bad", RemoteURL: "https://x/bad.pdf", Checksum: catalog.Checksum{SHA256: "deadbeef"}},
		{ID: "plain", RemoteURL: "https://x/plain.pdf"},
		{ID: "remote", RemoteURL: "https://x/remote.pdf"},
	})

	res := verifyEntries(m, entries, true)
	if res.verified != 1 || res.unchecked != 1 || res.missing != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(res.corrupt) != 1 || res.corrupt[0] != "bad" {
		t.Errorf("corrupt = %v, want [bad]", res.corrupt)
	}
	if m.Exists(filepath.Join(m.Dir(), "bad.pdf")) {
		t.Error("corrupt file not removed")
	}
	if !m.Exists(filepath.Join(m.Dir(), "good.pdf")) {
		t.Error("verified file removed")
	}
}

func TestEventQueue_KeepsEveryEventInOrder(t *testing.T) {
	q := newEventQueue()
	const n = 500
	// Nothing is reading yet; push must not block or drop.
	for i := 0; i < n; i++ {
		q.push(cache.Event{ID: fmt.Sprint(i), Stage: cache.StagePreviewFailed})
	}

	done := make(chan struct{})
	defer close(done)
	go q.run(done)

	for i := 0; i < n; i++ {
		select {
		case ev := <-q.out:
			if ev.ID != fmt.Sprint(i) {
				t.Fatalf("event %d has id %s", i, ev.ID)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}

	q.push(cache.Event{ID: "late"})
	select {
	case ev := <-q.out:
		if ev.ID != "late" {
			t.Errorf("late event id = %s", ev.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event pushed after draining not delivered")
	}
}

func TestEventQueue_StopsOnDone(t *testing.T) {
	q := newEventQueue()
	q.push(cache.Event{ID: "x"})
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		q.run(done)
		close(stopped)
	}()
	close(done)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after done")
	}
}
