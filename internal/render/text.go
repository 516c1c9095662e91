package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/farellandr/eventpass/internal/design"
)

const (
	defaultFontSize = 16
	textPadding     = 4
)

var defaultTextColor = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}

type fontKey struct {
	mono, bold bool
}

// fontSet holds the parsed Go fonts. Faces are created per draw since a
// face is not safe for concurrent use.
type fontSet struct {
	fonts map[fontKey]*opentype.Font
}

var (
	fontsOnce   sync.Once
	sharedFonts *fontSet
)

func defaultFonts() *fontSet {
	fontsOnce.Do(func() {
		set := &fontSet{fonts: map[fontKey]*opentype.Font{}}
		for key, ttf := range map[fontKey][]byte{
			{mono: false, bold: false}: goregular.TTF,
			{mono: false, bold: true}:  gobold.TTF,
			{mono: true, bold: false}:  gomono.TTF,
			{mono: true, bold: true}:   gomonobold.TTF,
		} {
			f, err := opentype.Parse(ttf)
			if err != nil {
				// the embedded fonts are known good
				panic(err)
			}
			set.fonts[key] = f
		}
		sharedFonts = set
	})
	return sharedFonts
}

func pickFont(family, weight string) fontKey {
	fam := strings.ToLower(family)
	mono := strings.Contains(fam, "mono") || strings.Contains(fam, "courier")
	return fontKey{mono: mono, bold: isBold(weight)}
}

func isBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

func (fs *fontSet) face(key fontKey, size float64) (font.Face, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	return opentype.NewFace(fs.fonts[key], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawText lays out text inside dst: one line per "\n", the block centred
// vertically and each line aligned by el.TextAlign.
func (fs *fontSet) drawText(dst *image.NRGBA, el design.Element, text string) error {
	if text == "" {
		return nil
	}
	face, err := fs.face(pickFont(el.FontFamily, el.FontWeight), el.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(design.ColorOr(el.Color, defaultTextColor)),
		Face: face,
	}

	lines := strings.Split(text, "\n")
	m := face.Metrics()
	lineHeight := m.Height
	if lineHeight == 0 {
		lineHeight = m.Ascent + m.Descent
	}
	w := fixed.I(dst.Bounds().Dx())
	h := fixed.I(dst.Bounds().Dy())
	top := (h - lineHeight*fixed.Int26_6(len(lines))) / 2

	for i, line := range lines {
		adv := d.MeasureString(line)
		var x fixed.Int26_6
		switch el.TextAlign {
		case "center":
			x = (w - adv) / 2
		case "right":
			x = w - adv - fixed.I(textPadding)
		default:
			x = fixed.I(textPadding)
		}
		y := top + lineHeight*fixed.Int26_6(i) + m.Ascent
		d.Dot = fixed.Point26_6{X: x, Y: y}
		d.DrawString(line)
	}
	return nil
}
