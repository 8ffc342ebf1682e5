// Package adapter defines the notification boundary for ingestion lifecycle
// events.
//
// Adapters publish events to downstream systems after the ingestion
// controller reaches a terminal state. Delivery is best-effort: a failed
// publish is logged and counted, and never changes controller state.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// Lifecycle event types.
const (
	EventDocumentIndexed  = "document_indexed"
	EventIngestionFailed  = "ingestion_failed"
	EventDocumentsCleared = "documents_cleared"
)

// Failure stages reported on ingestion_failed events.
const (
	StageUpload = "upload"
	StageIndex  = "index"
)

// LifecycleEvent is the payload published when ingestion settles.
type LifecycleEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"`
	SessionID       string `json:"session_id"`
	Timestamp       string `json:"timestamp"` // RFC 3339
	DocumentName    string `json:"document_name,omitempty"`
	DocumentType    string `json:"document_type,omitempty"`
	DocumentSize    int64  `json:"document_size,omitempty"`
	StoragePath     string `json:"storage_path,omitempty"`
	Stage           string `json:"stage,omitempty"`   // ingestion_failed only
	Message         string `json:"message,omitempty"` // user-facing outcome text
	DurationMs      int64  `json:"duration_ms"`
}

// Adapter publishes lifecycle events to a downstream system.
type Adapter interface {
	// Publish sends an event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *LifecycleEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the wait before retry number n (n >= 1):
// 500ms, 1s, 2s, ...
func Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return time.Duration(1<<uint(n-1)) * 500 * time.Millisecond
}

// Retry calls attempt up to 1+retries times with Backoff between calls.
// attempt reports whether a failure may be retried; a permanent failure
// stops immediately. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, attempt func(context.Context) (retriable bool, err error)) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}

		retriable, err := attempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable {
			return fmt.Errorf("%s: non-retriable error: %w", name, err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
