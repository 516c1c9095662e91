// Package render rasterizes a design.Document into an image with live ticket
// data substituted for the semantic element kinds.
//
// Rendering is deterministic: the same document, bindings and mode always
// produce the same pixels. Bindings carry their own clock so that the
// remaining-days kind does not read the wall clock.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/farellandr/eventpass/internal/design"
)

var (
	// ErrMissingQRPayload is returned in ModeFinal when a qr-code element
	// has nothing to encode. Final artifacts must always carry a real code.
	ErrMissingQRPayload = errors.New("render: qr payload required for final render")
	ErrQRTooSmall       = errors.New("render: qr element too small for payload")
	ErrAsset            = errors.New("render: asset unavailable")
)

type Mode int

const (
	// ModePreview is used by the designer. QR elements show a placeholder.
	ModePreview Mode = iota
	// ModeFinal produces the artifact handed to an attendee.
	ModeFinal
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "final":
		return ModeFinal, nil
	case "preview":
		return ModePreview, nil
	}
	return ModeFinal, fmt.Errorf("render: unknown mode %q", s)
}

func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "final"
}

type Renderer struct {
	assets AssetFetcher
	fonts  *fontSet
}

func NewRenderer(assets AssetFetcher) *Renderer {
	return &Renderer{assets: assets, fonts: defaultFonts()}
}

// job carries per-render state. Assets are fetched at most once per URL.
type job struct {
	ctx      context.Context
	r        *Renderer
	bindings Bindings
	mode     Mode
	images   map[string]image.Image
}

func (j *job) image(url string) (image.Image, error) {
	if img, ok := j.images[url]; ok {
		return img, nil
	}
	if j.r.assets == nil {
		return nil, fmt.Errorf("%w: no fetcher configured for %s", ErrAsset, url)
	}
	img, err := j.r.assets.Fetch(j.ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAsset, err)
	}
	j.images[url] = img
	return img, nil
}

func (r *Renderer) Render(ctx context.Context, doc design.Document, b Bindings, mode Mode) (*image.NRGBA, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	j := &job{ctx: ctx, r: r, bindings: b, mode: mode, images: map[string]image.Image{}}

	canvas, err := j.background(doc.CanvasSize, doc.Background)
	if err != nil {
		return nil, err
	}

	for _, el := range doc.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		layer, err := j.element(el)
		if err != nil {
			return nil, fmt.Errorf("render: element %s: %w", el.ID, err)
		}
		composite(canvas, layer, el)
	}
	return canvas, nil
}

func (r *Renderer) RenderPNG(ctx context.Context, doc design.Document, b Bindings, mode Mode) ([]byte, error) {
	img, err := r.Render(ctx, doc, b, mode)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// composite rotates layer about its centre and places that centre on the
// centre of the element box. Anything outside the canvas is clipped.
func composite(canvas *image.NRGBA, layer *image.NRGBA, el design.Element) {
	rot := math.Mod(el.Rotation, 360)
	src := layer
	if rot != 0 {
		// imaging rotates counter-clockwise, element rotation is clockwise
		src = imaging.Rotate(layer, -rot, color.Transparent)
	}

	cx := el.X + el.Width/2
	cy := el.Y + el.Height/2
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	origin := image.Pt(
		int(math.Round(cx-float64(sw)/2)),
		int(math.Round(cy-float64(sh)/2)),
	)
	dst := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(sw, sh))}
	draw.Draw(canvas, dst, src, src.Bounds().Min, draw.Over)
}

func boxSize(el design.Element) (int, int) {
	w := int(math.Round(el.Width))
	h := int(math.Round(el.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
