package cache

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"golang.org/x/image/draw"
)

// PreviewRequest describes one preview to derive.
type PreviewRequest struct {
	Source string  // local document
	Dest   string  // PNG output path
	Width  int     // device-independent units
	Height int     // device-independent units
	Scale  float64 // pixels per unit
}

// PixelSize returns the output bitmap size.
func (r PreviewRequest) PixelSize() (int, int) {
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}
	return int(math.Round(float64(r.Width) * scale)), int(math.Round(float64(r.Height) * scale))
}

// Previewer turns a local document into a bitmap preview. Implementations
// may be slow and may fail.
type Previewer interface {
	Preview(ctx context.Context, req PreviewRequest) (*catalog.Preview, error)
}

// PopplerPreviewer renders page 1 with poppler's pdftoppm and fits the
// result into the requested box.
type PopplerPreviewer struct {
	// Command overrides the pdftoppm binary.
	Command string
}

// Preview renders req.Source into req.Dest.
func (p PopplerPreviewer) Preview(ctx context.Context, req PreviewRequest) (*catalog.Preview, error) {
	name := p.Command
	if name == "" {
		name = "pdftoppm"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found (%s)", name, PopplerInstallHint())
	}

	w, h := req.PixelSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", w, h)
	}

	if err := os.MkdirAll(filepath.Dir(req.Dest), 0750); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(filepath.Dir(req.Dest), ".render-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	// -singlefile writes <prefix>.png instead of <prefix>-1.png.
	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-f", "1",
		"-l", "1",
		"-singlefile",
		"-scale-to", strconv.Itoa(max(w, h)),
		req.Source,
		prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	src, err := readPNG(prefix + ".png")
	if err != nil {
		return nil, err
	}
	if err := writePNG(req.Dest, Fit(src, w, h)); err != nil {
		return nil, err
	}
	return &catalog.Preview{Path: req.Dest, Width: w, Height: h, Scale: req.Scale}, nil
}

// Fit scales src to fit inside a w x h canvas, keeping its aspect ratio,
// centred on white.
func Fit(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return dst
	}
	ratio := math.Min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	fw := max(1, int(math.Round(float64(sb.Dx())*ratio)))
	fh := max(1, int(math.Round(float64(sb.Dy())*ratio)))
	x0 := (w - fw) / 2
	y0 := (h - fh) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+fw, y0+fh), src, sb, draw.Over, nil)
	return dst
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// writePNG encodes img next to path and renames it into place.
func writePNG(path string, img image.Image) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+tmpSuffix)
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encoding preview: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// PopplerInstallHint returns the platform's install command for poppler.
func PopplerInstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "install with: brew install poppler"
	case "windows":
		return "install poppler and add its bin directory to PATH"
	default:
		return "install with: sudo apt install poppler-utils (or your distro's poppler package)"
	}
}
