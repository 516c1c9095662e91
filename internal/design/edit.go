package design

import "fmt"

const (
	OpAdd        = "add"
	OpMove       = "move"
	OpResize     = "resize"
	OpUpdate     = "update"
	OpForward    = "forward"
	OpBackward   = "backward"
	OpDelete     = "delete"
	OpBackground = "background"
	OpUndo       = "undo"
	OpRedo       = "redo"
	OpPreview    = "preview"
	OpEndPreview = "exit-preview"
)

// Edit is one designer operation in a batch sent by the client.
type Edit struct {
	Op         string        `json:"op"`
	ID         string        `json:"id,omitempty"`
	Kind       Kind          `json:"kind,omitempty"`
	DX         float64       `json:"dx,omitempty"`
	DY         float64       `json:"dy,omitempty"`
	Handle     string        `json:"handle,omitempty"`
	Element    *ElementPatch `json:"element,omitempty"`
	Background *Background   `json:"background,omitempty"`
}

type ElementPatch struct {
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	Rotation        *float64 `json:"rotation,omitempty"`
	FontSize        *float64 `json:"fontSize,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty"`
	Color           *string  `json:"color,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty"`
	TextAlign       *string  `json:"textAlign,omitempty"`
	FontWeight      *string  `json:"fontWeight,omitempty"`
	Content         *string  `json:"content,omitempty"`
	ImageURL        *string  `json:"imageUrl,omitempty"`
}

func (p ElementPatch) apply(el *Element) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setS := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&el.X, p.X)
	setF(&el.Y, p.Y)
	setF(&el.Width, p.Width)
	setF(&el.Height, p.Height)
	setF(&el.Rotation, p.Rotation)
	setF(&el.FontSize, p.FontSize)
	setS(&el.FontFamily, p.FontFamily)
	setS(&el.Color, p.Color)
	setS(&el.BackgroundColor, p.BackgroundColor)
	setF(&el.BorderRadius, p.BorderRadius)
	setS(&el.TextAlign, p.TextAlign)
	setS(&el.FontWeight, p.FontWeight)
	setS(&el.Content, p.Content)
	setS(&el.ImageURL, p.ImageURL)
}

// Apply runs edits in order and stops at the first failure. Edits applied
// before the failure stay in the history.
func (e *Editor) Apply(edits []Edit) error {
	for i, ed := range edits {
		if err := e.applyOne(ed); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, ed.Op, err)
		}
	}
	return nil
}

func (e *Editor) applyOne(ed Edit) error {
	switch ed.Op {
	case OpAdd:
		_, err := e.Add(ed.Kind)
		return err
	case OpMove:
		return e.Move(ed.ID, ed.DX, ed.DY)
	case OpResize:
		h, err := ParseHandle(ed.Handle)
		if err != nil {
			return err
		}
		return e.Resize(ed.ID, h, ed.DX, ed.DY)
	case OpUpdate:
		if ed.Element == nil {
			return fmt.Errorf("%w: update without element fields", ErrInvalidDocument)
		}
		return e.Update(ed.ID, ed.Element.apply)
	case OpForward:
		return e.BringForward(ed.ID)
	case OpBackward:
		return e.SendBackward(ed.ID)
	case OpDelete:
		return e.Delete(ed.ID)
	case OpBackground:
		if ed.Background == nil {
			return fmt.Errorf("%w: background edit without background", ErrInvalidDocument)
		}
		return e.SetBackground(*ed.Background)
	case OpUndo:
		e.Undo()
		return nil
	case OpRedo:
		e.Redo()
		return nil
	case OpPreview:
		e.EnterPreview()
		return nil
	case OpEndPreview:
		e.ExitPreview()
		return nil
	}
	return fmt.Errorf("%w: unknown edit op %q", ErrInvalidDocument, ed.Op)
}
