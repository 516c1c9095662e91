package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/farellandr/eventpass/internal/design"
)

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (j *job) background(size design.Size, bg design.Background) (*image.NRGBA, error) {
	var canvas *image.NRGBA
	if bg.Gradient != nil {
		from, err := design.ParseColor(bg.Gradient.From)
		if err != nil {
			return nil, err
		}
		to, err := design.ParseColor(bg.Gradient.To)
		if err != nil {
			return nil, err
		}
		canvas = linearGradient(size.Width, size.Height, from, to, bg.Gradient.Angle)
	} else {
		canvas = imaging.New(size.Width, size.Height, design.ColorOr(bg.Color, white))
	}

	if bg.ImageURL != "" {
		img, err := j.image(bg.ImageURL)
		if err != nil {
			return nil, err
		}
		cover := imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)
		// an unset opacity means a fully opaque image
		opacity := bg.ImageOpacity
		if opacity == 0 {
			opacity = 1
		}
		canvas = imaging.Overlay(canvas, cover, image.Pt(0, 0), opacity)
	}

	if bg.TintColor != "" && bg.TintOpacity > 0 {
		tint := imaging.New(size.Width, size.Height, design.ColorOr(bg.TintColor, color.NRGBA{}))
		canvas = imaging.Overlay(canvas, tint, image.Pt(0, 0), bg.TintOpacity)
	}
	return canvas, nil
}

// linearGradient follows CSS linear-gradient angles: 0deg runs bottom to
// top, 90deg left to right. The gradient line is long enough that the
// corners receive the pure stop colors.
func linearGradient(w, h int, from, to color.NRGBA, angle float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	length := math.Abs(float64(w)*dx) + math.Abs(float64(h)*dy)
	if length == 0 {
		length = 1
	}

	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := float64(x) + 0.5 - cx
			py := float64(y) + 0.5 - cy
			t := (px*dx+py*dy)/length + 0.5
			img.SetNRGBA(x, y, lerp(from, to, clamp01(t)))
		}
	}
	return img
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
