package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/eventpass/internal/design"
	"github.com/farellandr/eventpass/internal/models"
	"github.com/farellandr/eventpass/internal/repository"
)

// editorSession keeps a designer's undo history between edit batches. It
// is only reused while the stored template has not changed underneath it.
type editorSession struct {
	editor    *design.Editor
	updatedAt time.Time
}

type TemplateService struct {
	store  repository.Store
	logger *zap.Logger
	limit  int

	mu      sync.Mutex
	editors map[uuid.UUID]*editorSession
}

type TemplateInput struct {
	Name     string
	Category string
	Document *design.Document
}

type EditResult struct {
	Template *models.TicketTemplate `json:"template"`
	CanUndo  bool                   `json:"can_undo"`
	CanRedo  bool                   `json:"can_redo"`
	Preview  bool                   `json:"preview"`
}

func documentErr(err error) error {
	switch {
	case errors.Is(err, design.ErrInvalidDocument),
		errors.Is(err, design.ErrElementNotFound),
		errors.Is(err, design.ErrPreviewMode):
		return invalid("document", "%v", err)
	}
	return err
}

func (s *TemplateService) List(ctx context.Context, actor Actor, category string) ([]models.TicketTemplate, error) {
	filter := repository.TemplateFilter{Category: category}
	if actor.Role != RoleAdmin {
		filter.OrganizerID = actor.UserID
	}
	templates, err := s.store.ListTemplates(ctx, filter)
	if err != nil {
		return nil, storeErr("list templates", err)
	}
	return templates, nil
}

func (s *TemplateService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.TicketTemplate, error) {
	template, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, storeErr("get template", err)
	}
	if !actor.owns(template.OrganizerID) {
		return nil, ErrForbidden
	}
	return template, nil
}

func (s *TemplateService) Create(ctx context.Context, actor Actor, in TemplateInput) (*models.TicketTemplate, error) {
	if actor.UserID == "" {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	doc := design.NewDocument()
	if in.Document != nil {
		doc = in.Document.Clone()
		if doc.Elements == nil {
			doc.Elements = []design.Element{}
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, documentErr(err)
	}

	template := &models.TicketTemplate{
		OrganizerID: actor.UserID,
		Name:        name,
		Category:    strings.TrimSpace(in.Category),
		Document:    doc,
	}
	if err := s.store.InsertTemplate(ctx, template); err != nil {
		return nil, storeErr("insert template", err)
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return storeErr("delete template", err)
	}
	s.mu.Lock()
	delete(s.editors, id)
	s.mu.Unlock()
	return nil
}

// ApplyEdits runs a batch of designer operations against the template and
// stores the result. A batch is all or nothing: if any edit fails nothing
// is stored and the undo history is rebuilt from the stored document.
func (s *TemplateService) ApplyEdits(ctx context.Context, actor Actor, id uuid.UUID, edits []design.Edit) (*EditResult, error) {
	if len(edits) == 0 {
		return nil, invalid("edits", "at least one edit is required")
	}
	template, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.editors[id]
	if !ok || !sameInstant(session.updatedAt, template.UpdatedAt) {
		session = &editorSession{editor: design.NewEditor(template.Document, s.limit)}
	}
	if err := session.editor.Apply(edits); err != nil {
		delete(s.editors, id)
		return nil, documentErr(err)
	}

	updated, err := s.store.UpdateTemplateDocument(ctx, id, session.editor.Document())
	if err != nil {
		delete(s.editors, id)
		return nil, storeErr("update template", err)
	}
	session.updatedAt = updated.UpdatedAt
	s.editors[id] = session

	return &EditResult{
		Template: updated,
		CanUndo:  session.editor.CanUndo(),
		CanRedo:  session.editor.CanRedo(),
		Preview:  session.editor.Previewing(),
	}, nil
}

// sameInstant compares at the precision Postgres stores timestamps with.
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}
