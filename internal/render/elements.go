package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/farellandr/eventpass/internal/design"
)

var shapeFill = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

// element paints el into a layer the size of its box. Overflow is clipped
// by the layer bounds.
func (j *job) element(el design.Element) (*image.NRGBA, error) {
	w, h := boxSize(el)
	layer := image.NewNRGBA(image.Rect(0, 0, w, h))

	switch el.Kind {
	case design.KindRectangle:
		fillRoundedRect(layer, design.ColorOr(el.BackgroundColor, shapeFill), el.BorderRadius)
	case design.KindCircle:
		fillEllipse(layer, design.ColorOr(el.BackgroundColor, shapeFill))
	case design.KindQRCode:
		if err := j.qrCode(layer, el); err != nil {
			return nil, err
		}
	case design.KindLogo:
		if err := j.logo(layer, el); err != nil {
			return nil, err
		}
	case design.KindText, design.KindDate, design.KindUserName, design.KindEventName,
		design.KindStatus, design.KindBenefits, design.KindRemainingDays, design.KindPinCode:
		if el.BackgroundColor != "" {
			fillRoundedRect(layer, design.ColorOr(el.BackgroundColor, color.NRGBA{}), el.BorderRadius)
		}
		if err := j.r.fonts.drawText(layer, el, j.text(el)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown element kind %q", design.ErrInvalidDocument, el.Kind)
	}
	return layer, nil
}

func (j *job) text(el design.Element) string {
	b := j.bindings
	switch el.Kind {
	case design.KindText:
		return el.Content
	case design.KindEventName:
		return b.EventTitle
	case design.KindUserName:
		return b.HolderName
	case design.KindStatus:
		return StatusLabel(b.Status)
	case design.KindBenefits:
		return BenefitsLabel(b.UsedBenefits, b.TotalBenefits)
	case design.KindRemainingDays:
		return RemainingDaysLabel(b.EventEnd, b.Now)
	case design.KindPinCode:
		return b.PIN
	case design.KindDate:
		return DateLabel(b.EventStart, el.Content)
	}
	return ""
}

func (j *job) logo(layer *image.NRGBA, el design.Element) error {
	if el.BackgroundColor != "" {
		fillRoundedRect(layer, design.ColorOr(el.BackgroundColor, color.NRGBA{}), el.BorderRadius)
	}
	if el.ImageURL == "" {
		if j.mode == ModePreview {
			fillRoundedRect(layer, shapeFill, el.BorderRadius)
		}
		return nil
	}
	img, err := j.image(el.ImageURL)
	if err != nil {
		return err
	}

	b := layer.Bounds()
	fitted := imaging.Fit(img, b.Dx(), b.Dy(), imaging.Lanczos)
	fb := fitted.Bounds()
	origin := image.Pt((b.Dx()-fb.Dx())/2, (b.Dy()-fb.Dy())/2)
	draw.Draw(layer, fb.Sub(fb.Min).Add(origin), fitted, fb.Min, draw.Over)
	return nil
}
