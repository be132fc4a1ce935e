package programpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-program/program"
	"golang.org/x/sync/errgroup"
)

const (
	maxLogos          = 2
	defaultLogoSize   = 20.0
	defaultLogoBytes  = 4 * 1024 * 1024
	defaultLogoFetchT = 10 * time.Second
)

// LogoSpec describes a header logo. Source is an http(s) URL or a file path.
type LogoSpec struct {
	Name   string
	Source string
	Width  float64
	Height float64
}

func (s LogoSpec) size() (float64, float64) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = defaultLogoSize
	}
	if h <= 0 {
		h = defaultLogoSize
	}
	return w, h
}

// Logo is a loaded logo re-encoded as an 8-bit PNG.
type Logo struct {
	Spec LogoSpec
	PNG  []byte
}

// LogoLoader fetches logos. Failures are logged and leave the logo absent.
type LogoLoader struct {
	Client   *http.Client
	FS       fs.FS
	MaxBytes int64
	Timeout  time.Duration
	Logger   program.Logger
}

// Load fetches up to two logos concurrently. The result is aligned with specs;
// a nil entry means the logo is absent. A failed logo never cancels the
// others, so the group is only used to wait.
func (l LogoLoader) Load(ctx context.Context, specs []LogoSpec) []*Logo {
	if len(specs) > maxLogos {
		specs = specs[:maxLogos]
	}
	logos := make([]*Logo, len(specs))
	if len(specs) == 0 {
		return logos
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			logo, err := l.loadOne(ctx, spec)
			if err != nil {
				l.logger().Errorf("program pdf: logo %q unavailable: %v", spec.Name, err)
				return nil
			}
			logos[i] = logo
			return nil
		})
	}
	_ = g.Wait()
	return logos
}

func (l LogoLoader) loadOne(ctx context.Context, spec LogoSpec) (*Logo, error) {
	source := strings.TrimSpace(spec.Source)
	if source == "" {
		return nil, program.NewError(program.KindAsset, "logo source is empty", nil)
	}
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, program.NewError(program.KindAsset, fmt.Sprintf("logo %q fetch failed", source), err)
	}
	encoded, err := normalizeImage(raw)
	if err != nil {
		return nil, program.NewError(program.KindAsset, fmt.Sprintf("logo %q is not a usable image", source), err)
	}
	return &Logo{Spec: spec, PNG: encoded}, nil
}

func (l LogoLoader) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetchHTTP(ctx, source)
	}
	var (
		file io.ReadCloser
		err  error
	)
	if l.FS != nil {
		file, err = l.FS.Open(strings.TrimPrefix(source, "/"))
	} else {
		file, err = os.Open(source)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return l.readLimited(file)
}

func (l LogoLoader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultLogoFetchT
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l LogoLoader) readLimited(r io.Reader) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultLogoBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("logo exceeds %d bytes", limit)
	}
	return data, nil
}

func (l LogoLoader) logger() program.Logger {
	if l.Logger == nil {
		return program.NopLogger{}
	}
	return l.Logger
}

// normalizeImage decodes PNG, JPEG or GIF data and re-encodes it as a
// non-interlaced 8-bit PNG the PDF writer can embed.
func normalizeImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("logo has no pixels")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}
