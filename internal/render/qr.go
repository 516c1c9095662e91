package render

import (
	"fmt"
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/farellandr/eventpass/internal/design"
)

var (
	black       = color.NRGBA{A: 0xff}
	placeholder = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

// QRBitmap returns the module grid for payload, quiet zone included.
func QRBitmap(payload string) ([][]bool, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("render: encode qr: %w", err)
	}
	return q.Bitmap(), nil
}

// QRPNG encodes payload as a standalone PNG of the given pixel size.
func QRPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrMissingQRPayload
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render: encode qr: %w", err)
	}
	return png, nil
}

func (j *job) qrCode(layer *image.NRGBA, el design.Element) error {
	fillRoundedRect(layer, design.ColorOr(el.BackgroundColor, white), el.BorderRadius)
	fg := design.ColorOr(el.Color, black)

	if j.mode == ModePreview {
		drawModules(layer, placeholderModules(), fg, placeholder)
		return nil
	}

	if j.bindings.QRPayload == "" {
		return ErrMissingQRPayload
	}
	bitmap, err := QRBitmap(j.bindings.QRPayload)
	if err != nil {
		return err
	}
	b := layer.Bounds()
	if min(b.Dx(), b.Dy()) < len(bitmap) {
		return fmt.Errorf("%w: %dx%d box, %d modules", ErrQRTooSmall, b.Dx(), b.Dy(), len(bitmap))
	}
	drawModules(layer, bitmap, fg, fg)
	return nil
}

// drawModules scales the grid to a whole number of pixels per module and
// centres it. Finder patterns use fg, the remaining dark modules use fill.
func drawModules(layer *image.NRGBA, grid [][]bool, fg, fill color.NRGBA) {
	n := len(grid)
	b := layer.Bounds()
	module := min(b.Dx(), b.Dy()) / n
	if module < 1 {
		module = 1
	}
	ox := (b.Dx() - module*n) / 2
	oy := (b.Dy() - module*n) / 2

	for y, row := range grid {
		for x, dark := range row {
			if !dark {
				continue
			}
			c := fill
			if inFinder(x, y, n) {
				c = fg
			}
			r := image.Rect(ox+x*module, oy+y*module, ox+(x+1)*module, oy+(y+1)*module)
			fillRect(layer, r, c)
		}
	}
}

const (
	placeholderSize = 29
	quietZone       = 4
)

// placeholderModules is a fixed QR-looking grid: three finder squares and
// a repeating fill. It encodes nothing.
func placeholderModules() [][]bool {
	grid := make([][]bool, placeholderSize)
	for y := range grid {
		grid[y] = make([]bool, placeholderSize)
		for x := range grid[y] {
			inner := x >= quietZone && y >= quietZone &&
				x < placeholderSize-quietZone && y < placeholderSize-quietZone
			if !inner {
				continue
			}
			if inFinder(x, y, placeholderSize) {
				grid[y][x] = finderDark(x, y, placeholderSize)
				continue
			}
			grid[y][x] = (x*7+y*13)%5 < 2
		}
	}
	return grid
}

// inFinder reports whether module (x, y) belongs to one of the three
// finder patterns of an n×n grid that includes the quiet zone.
func inFinder(x, y, n int) bool {
	lo, hi := quietZone, n-quietZone-7
	within := func(v, start int) bool { return v >= start && v < start+7 }
	return (within(x, lo) && within(y, lo)) ||
		(within(x, hi) && within(y, lo)) ||
		(within(x, lo) && within(y, hi))
}

func finderDark(x, y, n int) bool {
	lo, hi := quietZone, n-quietZone-7
	fx, fy := x-lo, y-lo
	if x >= hi {
		fx = x - hi
	}
	if y >= hi {
		fy = y - hi
	}
	ring := fx == 0 || fx == 6 || fy == 0 || fy == 6
	core := fx >= 2 && fx <= 4 && fy >= 2 && fy <= 4
	return ring || core
}
