package state

import (
	"context"
	"sync"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/service"
)

// NoteState is the cached view over the note collection.
type NoteState struct {
	svc *service.NoteService

	mu      sync.RWMutex
	notes   []model.Note
	loading bool
	err     error
}

// NewNoteState creates an empty cache over the given service.
func NewNoteState(svc *service.NoteService) *NoteState {
	return &NoteState{svc: svc}
}

// Refresh re-reads the whole collection through the service.
func (s *NoteState) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	notes := s.svc.GetAll(ctx)

	s.mu.Lock()
	s.notes = notes
	s.loading = false
	s.err = nil
	s.mu.Unlock()
}

// All returns a copy of the cached collection.
func (s *NoteState) All() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Favorites returns the cached notes flagged as favorite.
func (s *NoteState) Favorites() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Note
	for _, n := range s.notes {
		if n.IsFavorite {
			out = append(out, n)
		}
	}
	return out
}

// Loading reports whether a refresh is in flight.
func (s *NoteState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last operation error.
func (s *NoteState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Create adds a note and caches the created record.
func (s *NoteState) Create(ctx context.Context, note model.Note) (model.Note, error) {
	created, err := s.svc.Create(ctx, note)
	if err != nil {
		s.setErr(err)
		return model.Note{}, err
	}
	s.mu.Lock()
	s.notes = append(s.notes, created)
	s.err = nil
	s.mu.Unlock()
	return created, nil
}

// Update applies a partial update, archiving the prior version, and
// refreshes the cached record.
func (s *NoteState) Update(ctx context.Context, id string, upd service.NoteUpdate) (model.Note, error) {
	updated, err := s.svc.Update(ctx, id, upd)
	if err != nil {
		s.setErr(err)
		return model.Note{}, err
	}
	s.replace(updated)
	return updated, nil
}

// Delete removes a note from the collection and the cache.
func (s *NoteState) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// ToggleFavorite flips a note's favorite flag.
func (s *NoteState) ToggleFavorite(ctx context.Context, id string) (model.Note, error) {
	updated, err := s.svc.ToggleFavorite(ctx, id)
	if err != nil {
		s.setErr(err)
		return model.Note{}, err
	}
	s.replace(updated)
	return updated, nil
}

func (s *NoteState) replace(note model.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == note.ID {
			s.notes[i] = note
			s.err = nil
			return
		}
	}
	s.notes = append(s.notes, note)
	s.err = nil
}

func (s *NoteState) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
