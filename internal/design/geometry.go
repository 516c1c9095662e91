package design

import (
	"fmt"
	"math"
	"strings"
)

// Handle names one of the eight resize grips around an element box.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

func ParseHandle(s string) (Handle, error) {
	switch h := Handle(strings.ToLower(s)); h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return h, nil
	}
	return "", fmt.Errorf("%w: unknown resize handle %q", ErrInvalidDocument, s)
}

// Clamp keeps the unrotated box inside the canvas with the minimum element
// size applied.
func Clamp(el Element, canvas Size) Element {
	cw, ch := float64(canvas.Width), float64(canvas.Height)
	el.Width = clampSize(el.Width, cw)
	el.Height = clampSize(el.Height, ch)
	el.X = clampPos(el.X, el.Width, cw)
	el.Y = clampPos(el.Y, el.Height, ch)
	return el
}

func Move(el Element, dx, dy float64, canvas Size) Element {
	el.X += dx
	el.Y += dy
	return Clamp(el, canvas)
}

// Resize drags one handle by (dx, dy). The edge opposite the handle stays put.
func Resize(el Element, h Handle, dx, dy float64, canvas Size) Element {
	hs := string(h)
	cw, ch := float64(canvas.Width), float64(canvas.Height)

	if strings.Contains(hs, "e") {
		el.Width = math.Max(el.Width+dx, MinElementSize)
		if el.X+el.Width > cw {
			el.Width = cw - el.X
		}
	}
	if strings.Contains(hs, "w") {
		right := el.X + el.Width
		x := math.Max(el.X+dx, 0)
		if right-x < MinElementSize {
			x = right - MinElementSize
		}
		el.X, el.Width = x, right-x
	}
	if strings.Contains(hs, "s") {
		el.Height = math.Max(el.Height+dy, MinElementSize)
		if el.Y+el.Height > ch {
			el.Height = ch - el.Y
		}
	}
	if strings.Contains(hs, "n") {
		bottom := el.Y + el.Height
		y := math.Max(el.Y+dy, 0)
		if bottom-y < MinElementSize {
			y = bottom - MinElementSize
		}
		el.Y, el.Height = y, bottom-y
	}
	return Clamp(el, canvas)
}

func clampSize(v, limit float64) float64 {
	if v > limit {
		v = limit
	}
	if v < MinElementSize {
		v = MinElementSize
	}
	return v
}

func clampPos(pos, size, limit float64) float64 {
	if pos+size > limit {
		pos = limit - size
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// DefaultElement returns a new element of the given kind with the geometry
// and style the designer starts from.
func DefaultElement(kind Kind, id string) Element {
	el := Element{
		ID:         id,
		Kind:       kind,
		X:          20,
		Y:          20,
		FontSize:   16,
		FontFamily: "Inter",
		Color:      "#111827",
		TextAlign:  "left",
		FontWeight: "normal",
	}

	switch kind {
	case KindText:
		el.Width, el.Height = 200, 40
		el.Content = "Text"
	case KindQRCode:
		el.Width, el.Height = 120, 120
		el.Color = "#000000"
		el.BackgroundColor = "#ffffff"
	case KindDate:
		el.Width, el.Height = 160, 30
		el.FontSize = 14
	case KindUserName:
		el.Width, el.Height = 220, 40
		el.FontSize = 20
		el.FontWeight = "bold"
	case KindEventName:
		el.Width, el.Height = 300, 48
		el.FontSize = 24
		el.FontWeight = "bold"
	case KindStatus:
		el.Width, el.Height = 120, 32
		el.FontSize = 14
		el.Color = "#ffffff"
		el.BackgroundColor = "#10b981"
		el.BorderRadius = 6
		el.TextAlign = "center"
	case KindBenefits, KindRemainingDays:
		el.Width, el.Height = 160, 30
		el.FontSize = 14
	case KindPinCode:
		el.Width, el.Height = 140, 36
		el.FontSize = 18
		el.FontFamily = "monospace"
		el.FontWeight = "bold"
	case KindLogo:
		el.Width, el.Height = 80, 80
	case KindRectangle:
		el.Width, el.Height = 150, 80
		el.BackgroundColor = "#e5e7eb"
	case KindCircle:
		el.Width, el.Height = 80, 80
		el.BackgroundColor = "#e5e7eb"
	}
	return el
}
