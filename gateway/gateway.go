// Package gateway defines the boundary to the document Q&A backend.
//
// The backend holds a single "current document": Upload replaces it,
// Index indexes whatever was uploaded last, Ask answers against the
// current index, and Clear drops every uploaded file and the index.
// None of the operations carries a document identifier.
//
// Every failure is reported as a *Error classified by Kind, so callers can
// tell "no response" apart from "server said no" without string matching.
package gateway

import (
	"context"
	"io"

	"github.com/pithecene-io/docqa/types"
)

// Operation names, used in errors and logs.
const (
	OpUpload = "upload"
	OpIndex  = "index"
	OpAsk    = "ask"
	OpClear  = "clear"
	OpHealth = "health"
)

// StatusSuccess is the status value the backend reports on success.
const StatusSuccess = "success"

// UploadRequest carries one file to the upload operation.
type UploadRequest struct {
	// Name is the file name sent in the multipart part (required).
	Name string
	// MIMEType is the part content type; empty sends application/octet-stream.
	MIMEType string
	// Content is the file body. The gateway reads it to EOF but does not close it.
	Content io.Reader
}

// UploadResult is the upload success payload.
type UploadResult struct {
	Status   string `json:"status"`
	FilePath string `json:"file_path"`
}

// IndexResult is the index success payload.
type IndexResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AskResult is the ask success payload.
// Answer is empty when the backend omitted it.
type AskResult struct {
	Question string         `json:"question,omitempty"`
	Answer   string         `json:"answer"`
	Sources  []types.Source `json:"source_nodes,omitempty"`
}

// HealthStatus is the backend health payload.
type HealthStatus struct {
	Status         string `json:"status"`
	UploadDir      string `json:"upload_dir,omitempty"`
	IndexDir       string `json:"index_dir,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	LLM            string `json:"llm,omitempty"`
}

// Gateway is the set of backend operations the controllers depend on.
// Implementations must respect context cancellation and must not retry.
type Gateway interface {
	// Upload sends one file and replaces the backend's current document.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Index indexes the most recently uploaded document.
	Index(ctx context.Context) (*IndexResult, error)

	// Ask answers a question against the current index.
	Ask(ctx context.Context, question string) (*AskResult, error)

	// Clear deletes all uploaded files and index state.
	Clear(ctx context.Context) error
}

// HealthChecker is implemented by gateways that can report backend health.
type HealthChecker interface {
	Health(ctx context.Context) (*HealthStatus, error)
}
