package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded source object that has been ingested
type Document struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TraceID      string    `json:"trace_id" db:"trace_id"`
	SourceBucket string    `json:"source_bucket" db:"source_bucket"`
	SourceKey    string    `json:"source_key" db:"source_key"`
	Filename     string    `json:"filename" db:"filename"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Document model
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new Document instance
func NewDocument(traceID, bucket, key, filename string) *Document {
	return &Document{
		ID:           uuid.New(),
		TraceID:      traceID,
		SourceBucket: bucket,
		SourceKey:    key,
		Filename:     filename,
		CreatedAt:    time.Now(),
	}
}

// SourceRef returns the bucket/key reference the document was loaded from
func (d *Document) SourceRef() string {
	if d.SourceBucket == "" {
		return d.SourceKey
	}
	return d.SourceBucket + "/" + d.SourceKey
}
