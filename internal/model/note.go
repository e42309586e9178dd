package model

import "time"

// Note content types.
const (
	NoteContentMarkdown = "markdown"
	NoteContentPlain    = "plain"
)

// Note is a free-form document with markdown content, versioned on
// every update.
type Note struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	ContentType string   `json:"contentType"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
	IsFavorite  bool     `json:"isFavorite,omitempty"`

	// RelatedNotes and RelatedTodos are non-owning id references.
	RelatedNotes []string `json:"relatedNotes,omitempty"`
	RelatedTodos []string `json:"relatedTodos,omitempty"`

	// Version starts at 1 and increments on every update. The prior
	// content is archived into the note's version-history collection.
	Version      int       `json:"version"`
	LastEditedAt time.Time `json:"lastEditedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NoteVersion is an archived snapshot of a note's content prior to an
// update. The history collection is append-only.
type NoteVersion struct {
	NoteID     string    `json:"noteId"`
	Version    int       `json:"version"`
	Content    string    `json:"content"`
	EditedAt   time.Time `json:"editedAt"`
	ArchivedAt time.Time `json:"archivedAt"`
}
