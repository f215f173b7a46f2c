package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/booklets/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKLETS_CONFIG", "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preview.Width != 100 || cfg.Preview.Height != 140 {
		t.Errorf("preview = %dx%d, want 100x140", cfg.Preview.Width, cfg.Preview.Height)
	}
	if cfg.Preview.Scale != config.DefaultPreviewScale {
		t.Errorf("scale = %v, want %v", cfg.Preview.Scale, config.DefaultPreviewScale)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir empty")
	}
	if cfg.Wiki.APIBase != config.DefaultWikiAPIBase {
		t.Errorf("Wiki.APIBase = %q", cfg.Wiki.APIBase)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
catalog_path: /srv/booklets.yml
cache_dir: /var/tmp/booklets
preview:
  scale: 3
download:
  concurrency: 8
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogPath != "/srv/booklets.yml" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
	if cfg.CacheDir != "/var/tmp/booklets" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Preview.Scale != 3 || cfg.Preview.Width != 100 {
		t.Errorf("Preview = %+v", cfg.Preview)
	}
	if cfg.Download.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Download.Concurrency)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BOOKLETS_CACHE_DIR", "/env/cache")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/env/cache" {
		t.Errorf("CacheDir = %q, want /env/cache", cfg.CacheDir)
	}
}

func TestLoad_InvalidPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("preview:\n  width: 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for zero preview width")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	in := &config.Config{
		CacheDir: "/tmp/x",
		Preview:  config.PreviewConfig{Width: 50, Height: 70, Scale: 1},
		Download: config.DownloadConfig{UserAgent: "ua", Concurrency: 2},
		Wiki:     config.WikiConfig{APIBase: "http://wiki", RequestsPerSecond: 1},
	}
	if err := config.Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Preview.Width != 50 || out.Download.UserAgent != "ua" || out.Wiki.APIBase != "http://wiki" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestPixelSize(t *testing.T) {
	w, h := config.PreviewConfig{Width: 100, Height: 140, Scale: 2}.PixelSize()
	if w != 200 || h != 280 {
		t.Errorf("PixelSize = %dx%d, want 200x280", w, h)
	}
}

func TestEffectiveConcurrency(t *testing.T) {
	if got := (config.DownloadConfig{}).EffectiveConcurrency(); got != 1 {
		t.Errorf("EffectiveConcurrency(0) = %d, want 1", got)
	}
	if got := (config.DownloadConfig{Concurrency: 6}).EffectiveConcurrency(); got != 6 {
		t.Errorf("EffectiveConcurrency(6) = %d, want 6", got)
	}
}

func TestDefaultPath(t *testing.T) {
	p := config.DefaultPath()
	if !strings.HasSuffix(p, "config.yml") {
		t.Errorf("DefaultPath = %q, should end with config.yml", p)
	}
}
