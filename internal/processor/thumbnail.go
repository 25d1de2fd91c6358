package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/woozymasta/wienmap/internal/config"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Thumbnail errors.
var (
	ErrHostNotAllowed = errors.New("thumbnail host not allowed")
	ErrEmptyImage     = errors.New("empty image")
)

const (
	maxImage     = 16 << 20
	maxRedirects = 5
)

// Thumbnailer downloads images from allow-listed hosts, scales them down
// and re-encodes them as WebP.
type Thumbnailer struct {
	client  *http.Client
	allowed map[string]bool
	width   int
	quality float32
}

// NewThumbnailer creates a thumbnailer from the thumbnail configuration.
func NewThumbnailer(client *http.Client, cfg config.Thumbnails) *Thumbnailer {
	if client == nil {
		client = http.DefaultClient
	}

	allowed := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		allowed[strings.ToLower(h)] = true
	}

	width := cfg.Width
	if width <= 0 {
		width = 160
	}
	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	t := &Thumbnailer{
		allowed: allowed,
		width:   width,
		quality: quality,
	}

	// Redirect targets go through the same allow list as the first request.
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		_, err := t.Allowed(req.URL.String())
		return err
	}
	t.client = &c

	return t
}

// Allowed parses src and checks it against the host allow list.
func (t *Thumbnailer) Allowed(src string) (*url.URL, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrHostNotAllowed, u.Scheme)
	}
	if !t.allowed[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	return u, nil
}

// Thumbnail returns src as a WebP image no wider than the configured width.
func (t *Thumbnailer) Thumbnail(ctx context.Context, src string) ([]byte, error) {
	u, err := t.Allowed(src)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImage))
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	// Filter out empty/1px placeholder images
	if img.Bounds().Dx() <= 1 || img.Bounds().Dy() <= 1 {
		return nil, ErrEmptyImage
	}

	scaled := t.scale(img)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, scaled, &webp.Options{Lossless: false, Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	log.Trace().
		Str("src", src).
		Str("format", format).
		Int("width", scaled.Bounds().Dx()).
		Int("bytes", buf.Len()).
		Msg("Thumbnail encoded")

	return buf.Bytes(), nil
}

// scale shrinks img to the configured width, keeping the aspect ratio.
// Smaller images are returned unchanged.
func (t *Thumbnailer) scale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= t.width {
		return img
	}

	height := b.Dy() * t.width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, t.width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
