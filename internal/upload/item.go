package upload

import "time"

// Status is the lifecycle state of a queued document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition will occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Document is one user-submitted file: raw bytes plus the declared media type.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Item is the externally visible state of one queued document. The manager
// is the sole mutator; callers only ever see copies.
type Item struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Status      Status    `json:"status"`
	Progress    int       `json:"progress"` // 0-100, monotonic while processing
	Description string    `json:"description,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// queueItem pairs the visible state with the document bytes, which are
// released once the item reaches a terminal status.
type queueItem struct {
	Item
	doc Document
}
