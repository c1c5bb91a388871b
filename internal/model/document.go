package model

import "time"

// StoredDocument is a file persisted by the storage backend, either a
// client-supplied upload or a converter-produced PDF.
// This is a pure domain model with no storage-specific dependencies.
type StoredDocument struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	StoredPath   string    `json:"stored_path"`
	Format       string    `json:"format"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversion is the persisted record of one pipeline run.
type Conversion struct {
	ID         string    `json:"id"`
	InputName  string    `json:"input_name"`
	OutputName string    `json:"output_name,omitempty"`
	Format     string    `json:"format"`
	Engine     string    `json:"engine,omitempty"`
	InputSize  int64     `json:"input_size"`
	OutputSize int64     `json:"output_size"`
	Pages      int       `json:"pages"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Status is the terminal state of a conversion.
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Stage tracks how far a conversion got. Any failure moves it to StageFailed.
type Stage string

const (
	StageReceived  Stage = "received"
	StageRead      Stage = "read"
	StageConverted Stage = "converted"
	StageWritten   Stage = "written"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)
