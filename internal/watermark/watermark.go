// Package watermark fetches allow-listed public images and returns a resized
// JPEG with a text mark in the bottom-right corner.
package watermark

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidURL     = errors.New("watermark: invalid image url")
	ErrHostNotAllowed = errors.New("watermark: image host not allowed")
)

const (
	DefaultMaxWidth = 1600
	JPEGQuality     = 85
	maxSourceBytes  = 30 << 20
	markOpacity     = 0.55
	maxRedirects    = 5
)

// Config configures a Service.
type Config struct {
	Text      string
	MaxWidth  int
	Allowlist []string
	Client    *http.Client
}

// Service renders watermarked copies.
type Service struct {
	text     string
	maxWidth int
	allowed  map[string]struct{}
	client   *http.Client
	font     *truetype.Font
}

func New(cfg Config) (*Service, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("watermark: parse font: %w", err)
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 20 * time.Second}
	}
	allowed := make(map[string]struct{}, len(cfg.Allowlist))
	for _, h := range cfg.Allowlist {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed[h] = struct{}{}
		}
	}
	svc := &Service{text: cfg.Text, maxWidth: cfg.MaxWidth, allowed: allowed, font: f}
	client := *cfg.Client
	client.CheckRedirect = svc.checkRedirect
	svc.client = &client
	return svc, nil
}

// checkRedirect holds every hop to the allow-list.
func (s *Service) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("watermark: stopped after %d redirects", maxRedirects)
	}
	_, err := s.CheckURL(req.URL.String())
	return err
}

// CheckURL parses raw and verifies its host is allow-listed.
func (s *Service) CheckURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	if _, ok := s.allowed[strings.ToLower(u.Hostname())]; !ok {
		return nil, ErrHostNotAllowed
	}
	return u, nil
}

// Allowed reports whether raw passes CheckURL.
func (s *Service) Allowed(raw string) bool {
	_, err := s.CheckURL(raw)
	return err == nil
}

// Width clamps a requested width into (0, max]. Zero or negative means max.
func (s *Service) Width(requested int) int {
	if requested <= 0 || requested > s.maxWidth {
		return s.maxWidth
	}
	return requested
}

// Render fetches raw, resizes it to width and stamps the mark.
func (s *Service) Render(ctx context.Context, raw string, width int) ([]byte, error) {
	u, err := s.CheckURL(raw)
	if err != nil {
		return nil, err
	}
	data, err := s.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("watermark: decode: %w", err)
	}
	out := s.Apply(src, s.Width(width))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("watermark: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Fetch downloads an allow-listed image without transforming it.
func (s *Service) Fetch(ctx context.Context, raw string) ([]byte, error) {
	u, err := s.CheckURL(raw)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, u.String())
}

func (s *Service) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("watermark: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watermark: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watermark: fetch: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("watermark: read body: %w", err)
	}
	if len(data) > maxSourceBytes {
		return nil, errors.New("watermark: source image too large")
	}
	return data, nil
}

// Apply resizes img to at most maxWidth and overlays the text mark.
func (s *Service) Apply(img image.Image, maxWidth int) *image.NRGBA {
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	canvas := imaging.Clone(img)
	if s.text == "" {
		return canvas
	}
	mark := s.renderText(canvas.Bounds().Dx())
	b, mb := canvas.Bounds(), mark.Bounds()
	pad := max(8, b.Dx()/60)
	pos := image.Pt(b.Max.X-mb.Dx()-pad, b.Max.Y-mb.Dy()-pad)
	return imaging.Overlay(canvas, mark, pos, markOpacity)
}

// renderText draws the mark on a transparent layer sized to the text, with
// a one pixel shadow so it reads on light and dark photos.
func (s *Service) renderText(imageWidth int) *image.NRGBA {
	size := max(14, float64(imageWidth)/40)
	face := truetype.NewFace(s.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	metrics := face.Metrics()
	textWidth := font.MeasureString(face, s.text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	layer := image.NewNRGBA(image.Rect(0, 0, textWidth+2, height+2))

	baseline := metrics.Ascent.Ceil()
	d := &font.Drawer{Dst: layer, Face: face}
	d.Src = image.NewUniform(color.NRGBA{A: 200})
	d.Dot = fixed.P(2, baseline+2)
	d.DrawString(s.text)
	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.P(0, baseline)
	d.DrawString(s.text)
	return layer
}
