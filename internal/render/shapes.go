package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// roundedRect is an alpha mask for a w×h box with corner radius r.
type roundedRect struct {
	w, h int
	r    float64
}

func (m roundedRect) ColorModel() color.Model { return color.AlphaModel }

func (m roundedRect) Bounds() image.Rectangle { return image.Rect(0, 0, m.w, m.h) }

func (m roundedRect) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return color.Alpha{}
	}
	if m.r < 1 {
		return color.Alpha{A: 0xff}
	}
	px, py := float64(x)+0.5, float64(y)+0.5
	w, h := float64(m.w), float64(m.h)
	// nearest corner centre, if the pixel lies in a corner square
	cx, cy := px, py
	switch {
	case px < m.r:
		cx = m.r
	case px > w-m.r:
		cx = w - m.r
	}
	switch {
	case py < m.r:
		cy = m.r
	case py > h-m.r:
		cy = h - m.r
	}
	return color.Alpha{A: coverage(math.Hypot(px-cx, py-cy), m.r)}
}

// ellipse is an alpha mask for the ellipse inscribed in a w×h box.
type ellipse struct {
	w, h int
}

func (m ellipse) ColorModel() color.Model { return color.AlphaModel }

func (m ellipse) Bounds() image.Rectangle { return image.Rect(0, 0, m.w, m.h) }

func (m ellipse) At(x, y int) color.Color {
	rx, ry := float64(m.w)/2, float64(m.h)/2
	nx := (float64(x) + 0.5 - rx) / rx
	ny := (float64(y) + 0.5 - ry) / ry
	// scaled to pixels along the shorter axis for the antialiased edge
	r := math.Min(rx, ry)
	return color.Alpha{A: coverage(math.Hypot(nx, ny)*r, r)}
}

// coverage antialiases a one pixel wide edge at distance radius.
func coverage(dist, radius float64) uint8 {
	a := radius - dist + 0.5
	switch {
	case a <= 0:
		return 0
	case a >= 1:
		return 0xff
	}
	return uint8(math.Round(a * 0xff))
}

func fillMask(dst *image.NRGBA, c color.NRGBA, mask image.Image) {
	if c.A == 0 {
		return
	}
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func fillRoundedRect(dst *image.NRGBA, c color.NRGBA, radius float64) {
	b := dst.Bounds()
	limit := math.Min(float64(b.Dx()), float64(b.Dy())) / 2
	fillMask(dst, c, roundedRect{w: b.Dx(), h: b.Dy(), r: math.Min(radius, limit)})
}

func fillEllipse(dst *image.NRGBA, c color.NRGBA) {
	b := dst.Bounds()
	fillMask(dst, c, ellipse{w: b.Dx(), h: b.Dy()})
}

func fillRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}
