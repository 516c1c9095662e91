package design

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrElementNotFound = errors.New("design: element not found")
	ErrPreviewMode     = errors.New("design: document is in preview mode")
)

const DefaultHistoryLimit = 50

// Editor applies designer operations to a document and keeps a linear
// undo/redo history of full-document snapshots. Snapshots are never modified
// after they are recorded; undo and redo only move the index. An Editor is
// owned by a single user and is not safe for concurrent use.
type Editor struct {
	history []Document
	index   int
	limit   int
	current Document
	preview bool
}

func NewEditor(doc Document, limit int) *Editor {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	if doc.Elements == nil {
		doc.Elements = []Element{}
	}
	return &Editor{
		history: []Document{doc.Clone()},
		limit:   limit,
		current: doc.Clone(),
	}
}

func (e *Editor) Document() Document { return e.current.Clone() }

func (e *Editor) CanUndo() bool { return !e.preview && e.index > 0 }

func (e *Editor) CanRedo() bool { return !e.preview && e.index < len(e.history)-1 }

func (e *Editor) Previewing() bool { return e.preview }

func (e *Editor) HistoryLen() int { return len(e.history) }

func (e *Editor) Undo() bool {
	if !e.CanUndo() {
		return false
	}
	e.index--
	e.current = e.history[e.index].Clone()
	return true
}

func (e *Editor) Redo() bool {
	if !e.CanRedo() {
		return false
	}
	e.index++
	e.current = e.history[e.index].Clone()
	return true
}

// EnterPreview switches to preview mode without recording history and
// returns the document to preview.
func (e *Editor) EnterPreview() Document {
	e.preview = true
	return e.current.Clone()
}

// ExitPreview restores the last edit-mode document.
func (e *Editor) ExitPreview() {
	e.preview = false
	e.current = e.history[e.index].Clone()
}

func (e *Editor) Add(kind Kind) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	id := e.nextID()
	err := e.mutate(func(doc *Document) error {
		doc.Elements = append(doc.Elements, Clamp(DefaultElement(kind, id), doc.CanvasSize))
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (e *Editor) Update(id string, fn func(el *Element)) error {
	return e.mutate(func(doc *Document) error {
		i := doc.Index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrElementNotFound, id)
		}
		el := doc.Elements[i]
		fn(&el)
		el.ID, el.Kind = doc.Elements[i].ID, doc.Elements[i].Kind
		el = Clamp(el, doc.CanvasSize)
		if err := el.Validate(); err != nil {
			return err
		}
		doc.Elements[i] = el
		return nil
	})
}

func (e *Editor) Move(id string, dx, dy float64) error {
	return e.withElement(id, func(el Element, canvas Size) Element {
		return Move(el, dx, dy, canvas)
	})
}

func (e *Editor) Resize(id string, h Handle, dx, dy float64) error {
	return e.withElement(id, func(el Element, canvas Size) Element {
		return Resize(el, h, dx, dy, canvas)
	})
}

// BringForward swaps the element with the one drawn directly above it.
func (e *Editor) BringForward(id string) error {
	return e.swap(id, 1)
}

// SendBackward swaps the element with the one drawn directly below it.
func (e *Editor) SendBackward(id string) error {
	return e.swap(id, -1)
}

func (e *Editor) Delete(id string) error {
	return e.mutate(func(doc *Document) error {
		i := doc.Index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrElementNotFound, id)
		}
		doc.Elements = append(doc.Elements[:i], doc.Elements[i+1:]...)
		return nil
	})
}

func (e *Editor) SetBackground(bg Background) error {
	return e.mutate(func(doc *Document) error {
		if err := bg.validate(); err != nil {
			return err
		}
		if bg.Gradient != nil {
			g := *bg.Gradient
			bg.Gradient = &g
		}
		doc.Background = bg
		return nil
	})
}

func (e *Editor) swap(id string, delta int) error {
	return e.mutate(func(doc *Document) error {
		i := doc.Index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrElementNotFound, id)
		}
		j := i + delta
		if j < 0 || j >= len(doc.Elements) {
			return nil
		}
		doc.Elements[i], doc.Elements[j] = doc.Elements[j], doc.Elements[i]
		return nil
	})
}

func (e *Editor) withElement(id string, fn func(Element, Size) Element) error {
	return e.mutate(func(doc *Document) error {
		i := doc.Index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrElementNotFound, id)
		}
		doc.Elements[i] = fn(doc.Elements[i], doc.CanvasSize)
		return nil
	})
}

// mutate runs fn on a copy of the current document and records the result
// as a new snapshot. A failing fn leaves the editor untouched.
func (e *Editor) mutate(fn func(doc *Document) error) error {
	if e.preview {
		return ErrPreviewMode
	}
	next := e.current.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	e.history = append(e.history[:e.index+1], next.Clone())
	if len(e.history) > e.limit {
		e.history = append([]Document(nil), e.history[len(e.history)-e.limit:]...)
	}
	e.index = len(e.history) - 1
	e.current = next
	return nil
}

func (e *Editor) nextID() string {
	for n := len(e.current.Elements) + 1; ; n++ {
		id := "el-" + strconv.Itoa(n)
		if e.current.Index(id) < 0 {
			return id
		}
	}
}
