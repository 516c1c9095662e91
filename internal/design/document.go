// Package design holds the ticket template scene model: a canvas, a
// background and an ordered list of positioned elements. Later elements are
// drawn on top of earlier ones.
package design

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidDocument = errors.New("design: invalid document")

const (
	MinElementSize = 24

	DefaultCanvasWidth  = 600
	DefaultCanvasHeight = 300
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Gradient struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Angle float64 `json:"angle"`
}

type Background struct {
	Color        string    `json:"color,omitempty"`
	Gradient     *Gradient `json:"gradient,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	ImageOpacity float64   `json:"imageOpacity,omitempty"`
	TintColor    string    `json:"tintColor,omitempty"`
	TintOpacity  float64   `json:"tintOpacity,omitempty"`
}

type Element struct {
	ID              string  `json:"id"`
	Kind            Kind    `json:"kind"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Rotation        float64 `json:"rotation"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontFamily      string  `json:"fontFamily,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"`
	TextAlign       string  `json:"textAlign,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`
	Content         string  `json:"content,omitempty"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

type Document struct {
	CanvasSize Size       `json:"canvasSize"`
	Background Background `json:"background"`
	Elements   []Element  `json:"elements"`
}

func NewDocument() Document {
	return Document{
		CanvasSize: Size{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		Background: Background{Color: "#ffffff"},
		Elements:   []Element{},
	}
}

// Clone returns a deep copy; snapshots in the editor history rely on it.
func (d Document) Clone() Document {
	c := d
	if d.Background.Gradient != nil {
		g := *d.Background.Gradient
		c.Background.Gradient = &g
	}
	c.Elements = make([]Element, len(d.Elements))
	copy(c.Elements, d.Elements)
	return c
}

func (d Document) Index(id string) int {
	for i, el := range d.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func (d Document) Validate() error {
	if d.CanvasSize.Width < MinElementSize || d.CanvasSize.Height < MinElementSize {
		return fmt.Errorf("%w: canvas must be at least %dx%d", ErrInvalidDocument, MinElementSize, MinElementSize)
	}
	if err := d.Background.validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(d.Elements))
	for i, el := range d.Elements {
		if el.ID == "" {
			return fmt.Errorf("%w: element %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := seen[el.ID]; dup {
			return fmt.Errorf("%w: duplicate element id %q", ErrInvalidDocument, el.ID)
		}
		seen[el.ID] = struct{}{}
		if err := el.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b Background) validate() error {
	if b.Color != "" {
		if _, err := ParseColor(b.Color); err != nil {
			return err
		}
	}
	if b.Gradient != nil {
		if _, err := ParseColor(b.Gradient.From); err != nil {
			return err
		}
		if _, err := ParseColor(b.Gradient.To); err != nil {
			return err
		}
		if !finite(b.Gradient.Angle) {
			return fmt.Errorf("%w: gradient angle must be finite", ErrInvalidDocument)
		}
	}
	if b.TintColor != "" {
		if _, err := ParseColor(b.TintColor); err != nil {
			return err
		}
	}
	if !unit(b.ImageOpacity) || !unit(b.TintOpacity) {
		return fmt.Errorf("%w: opacity must be within [0,1]", ErrInvalidDocument)
	}
	return nil
}

func (el Element) Validate() error {
	if _, err := ParseKind(string(el.Kind)); err != nil {
		return err
	}
	for _, v := range []float64{el.X, el.Y, el.Width, el.Height, el.Rotation, el.FontSize, el.BorderRadius} {
		if !finite(v) {
			return fmt.Errorf("%w: element %q has non-finite geometry", ErrInvalidDocument, el.ID)
		}
	}
	if el.Width <= 0 || el.Height <= 0 {
		return fmt.Errorf("%w: element %q must have a positive size", ErrInvalidDocument, el.ID)
	}
	if el.FontSize < 0 || el.BorderRadius < 0 {
		return fmt.Errorf("%w: element %q has negative style values", ErrInvalidDocument, el.ID)
	}
	switch el.TextAlign {
	case "", "left", "center", "right":
	default:
		return fmt.Errorf("%w: element %q has text align %q", ErrInvalidDocument, el.ID, el.TextAlign)
	}
	for _, c := range []string{el.Color, el.BackgroundColor} {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func unit(v float64) bool {
	return finite(v) && v >= 0 && v <= 1
}
