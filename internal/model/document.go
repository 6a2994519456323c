package model

import "time"

// UploadedDocument is a user-supplied file after text extraction.
// Only the extracted text is kept; the raw bytes live in the optional archive.
type UploadedDocument struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MimeType       string    `json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	ExtractedText  string    `json:"-"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReferenceContext is one entry of the seeded legal catalog.
type ReferenceContext struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
