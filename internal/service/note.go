package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/megactek/productivity-management/internal/config"
	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/storage"
)

// NoteUpdate carries a partial update; nil fields are left unchanged.
type NoteUpdate struct {
	Title       *string
	Content     *string
	ContentType *string
	Tags        *[]string
}

// NoteService owns the note collection and the per-note version
// history collections.
type NoteService struct {
	gw *storage.Gateway
	mu sync.Mutex

	// historyCleanup is config.HistoryClear or config.HistoryKeep and
	// decides what happens to a note's version history on delete.
	historyCleanup string
}

// NewNoteService creates a note service over the given gateway.
// historyCleanup selects the version-history policy applied on delete.
func NewNoteService(gw *storage.Gateway, historyCleanup string) *NoteService {
	if historyCleanup == "" {
		historyCleanup = config.HistoryClear
	}
	return &NoteService{gw: gw, historyCleanup: historyCleanup}
}

// versionsEntity names the per-note version-history collection.
func versionsEntity(noteID string) string {
	return "note_versions_" + noteID
}

// GetAll returns the entire note collection.
func (s *NoteService) GetAll(ctx context.Context) []model.Note {
	return readCollection[model.Note](ctx, s.gw, entityNotes)
}

// GetByID returns a single note.
func (s *NoteService) GetByID(ctx context.Context, id string) (*model.Note, error) {
	for _, n := range s.GetAll(ctx) {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, notFound("note", id)
}

// Search returns notes whose title, content, or tags contain the query
// (case-insensitive).
func (s *NoteService) Search(ctx context.Context, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.GetAll(ctx)
	}
	var out []model.Note
	for _, n := range s.GetAll(ctx) {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
			continue
		}
		for _, tag := range n.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Create validates the input, assigns an id and timestamps, and
// appends the note to the collection at version 1.
func (s *NoteService) Create(ctx context.Context, note model.Note) (model.Note, error) {
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return model.Note{}, validationf("title", "title is required")
	}
	if len(note.Title) > maxTitleLen {
		return model.Note{}, validationf("title", "title must be at most %d characters", maxTitleLen)
	}
	if note.ContentType == "" {
		note.ContentType = model.NoteContentMarkdown
	}

	now := time.Now().UTC()
	note.ID = uuid.New().String()
	note.Version = 1
	note.LastEditedAt = now
	note.CreatedAt = now
	note.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[model.Note](ctx, s.gw, entityNotes)
	notes = append(notes, note)
	if err := writeCollection(ctx, s.gw, entityNotes, notes); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// Update applies a partial update. The pre-update content and its
// lastEditedAt are archived into the note's version-history collection
// before the version is incremented.
func (s *NoteService) Update(ctx context.Context, id string, upd NoteUpdate) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[model.Note](ctx, s.gw, entityNotes)
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return model.Note{}, notFound("note", id)
	}

	prior := notes[idx]
	note := prior

	// Apply and validate on a scratch copy first: a rejected update must
	// leave both the note and its history untouched.
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return model.Note{}, validationf("title", "title is required")
		}
		note.Title = title
	}
	if upd.Content != nil {
		note.Content = *upd.Content
	}
	if upd.ContentType != nil {
		note.ContentType = *upd.ContentType
	}
	if upd.Tags != nil {
		note.Tags = *upd.Tags
	}

	// Archive the outgoing content before the note write so a failed
	// write never loses a version.
	history := readCollection[model.NoteVersion](ctx, s.gw, versionsEntity(id))
	history = append(history, model.NoteVersion{
		NoteID:     prior.ID,
		Version:    prior.Version,
		Content:    prior.Content,
		EditedAt:   prior.LastEditedAt,
		ArchivedAt: time.Now().UTC(),
	})
	if err := writeCollection(ctx, s.gw, versionsEntity(id), history); err != nil {
		return model.Note{}, err
	}

	now := time.Now().UTC()
	note.Version++
	note.LastEditedAt = now
	note.UpdatedAt = now

	notes[idx] = note
	if err := writeCollection(ctx, s.gw, entityNotes, notes); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// Delete removes a note and applies the configured version-history
// cleanup policy: HistoryClear rewrites the history collection to an
// empty list, HistoryKeep leaves it untouched.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[model.Note](ctx, s.gw, entityNotes)
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return notFound("note", id)
	}
	notes = append(notes[:idx], notes[idx+1:]...)
	if err := writeCollection(ctx, s.gw, entityNotes, notes); err != nil {
		return err
	}

	if s.historyCleanup == config.HistoryClear {
		if err := writeCollection(ctx, s.gw, versionsEntity(id), []model.NoteVersion{}); err != nil {
			return err
		}
	}
	return nil
}

// GetVersionHistory returns a note's archived versions in append
// order.
func (s *NoteService) GetVersionHistory(ctx context.Context, noteID string) []model.NoteVersion {
	return readCollection[model.NoteVersion](ctx, s.gw, versionsEntity(noteID))
}

// ToggleFavorite flips a note's favorite flag.
func (s *NoteService) ToggleFavorite(ctx context.Context, id string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.IsFavorite = !n.IsFavorite
		return nil
	})
}

// AttachImage adds an image reference to the note. Attaching an
// already present image is a no-op.
func (s *NoteService) AttachImage(ctx context.Context, id, image string) (model.Note, error) {
	if strings.TrimSpace(image) == "" {
		return model.Note{}, validationf("image", "image reference is required")
	}
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.Images = appendUnique(n.Images, image)
		return nil
	})
}

// DetachImage removes an image reference from the note.
func (s *NoteService) DetachImage(ctx context.Context, id, image string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.Images = removeString(n.Images, image)
		return nil
	})
}

// AddTag adds a tag to the note. Idempotent.
func (s *NoteService) AddTag(ctx context.Context, id, tag string) (model.Note, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return model.Note{}, validationf("tag", "tag is required")
	}
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.Tags = appendUnique(n.Tags, tag)
		return nil
	})
}

// RemoveTag removes a tag from the note. Idempotent.
func (s *NoteService) RemoveTag(ctx context.Context, id, tag string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.Tags = removeString(n.Tags, tag)
		return nil
	})
}

// AddRelatedNote links another note. Idempotent; a note cannot relate
// to itself.
func (s *NoteService) AddRelatedNote(ctx context.Context, id, relatedID string) (model.Note, error) {
	if id == relatedID {
		return model.Note{}, validationf("relatedNotes", "a note cannot relate to itself")
	}
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.RelatedNotes = appendUnique(n.RelatedNotes, relatedID)
		return nil
	})
}

// RemoveRelatedNote unlinks another note. Idempotent.
func (s *NoteService) RemoveRelatedNote(ctx context.Context, id, relatedID string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.RelatedNotes = removeString(n.RelatedNotes, relatedID)
		return nil
	})
}

// AddRelatedTodo links a todo. Idempotent.
func (s *NoteService) AddRelatedTodo(ctx context.Context, id, todoID string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.RelatedTodos = appendUnique(n.RelatedTodos, todoID)
		return nil
	})
}

// RemoveRelatedTodo unlinks a todo. Idempotent.
func (s *NoteService) RemoveRelatedTodo(ctx context.Context, id, todoID string) (model.Note, error) {
	return s.mutateNote(ctx, id, func(n *model.Note) error {
		n.RelatedTodos = removeString(n.RelatedTodos, todoID)
		return nil
	})
}

// mutateNote runs fn against the addressed note inside a single
// read-modify-write cycle and persists the whole collection. Metadata
// mutations do not bump the content version.
func (s *NoteService) mutateNote(ctx context.Context, id string, fn func(*model.Note) error) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[model.Note](ctx, s.gw, entityNotes)
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return model.Note{}, notFound("note", id)
	}

	note := notes[idx]
	if err := fn(&note); err != nil {
		return model.Note{}, err
	}
	note.UpdatedAt = time.Now().UTC()

	notes[idx] = note
	if err := writeCollection(ctx, s.gw, entityNotes, notes); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func indexOfNote(notes []model.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
