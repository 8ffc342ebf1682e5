// Package session wires one ingestion controller and one conversation engine
// to a shared gateway. A Session is the explicit context passed to every
// surface; there is no package-level state.
package session

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/pithecene-io/docqa/adapter"
	"github.com/pithecene-io/docqa/conversation"
	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/ingest"
	"github.com/pithecene-io/docqa/log"
	"github.com/pithecene-io/docqa/metrics"
	"github.com/pithecene-io/docqa/types"
)

// ErrNotReady is returned by Ask until a document has been indexed.
var ErrNotReady = errors.New("no indexed document")

// Config holds the session's collaborators. Gateway is required.
type Config struct {
	// ID identifies the session in logs and events (default: random UUID).
	ID      string
	Gateway gateway.Gateway
	Logger  *log.Logger
	Metrics *metrics.Collector
	// Adapter, when set, receives ingestion lifecycle events and is closed
	// with the session.
	Adapter adapter.Adapter
	// IngestOptions are applied after the session's own options.
	IngestOptions []ingest.Option
}

// Session is one user's client session.
type Session struct {
	ID      string
	Ingest  *ingest.Controller
	Chat    *conversation.Engine
	Metrics *metrics.Collector

	gw      gateway.Gateway
	adapter adapter.Adapter
	logger  *log.Logger
}

// New builds a session. Both controllers share cfg.Gateway.
func New(cfg Config) (*Session, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("session: gateway is required")
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}

	ingestOpts := []ingest.Option{
		ingest.WithLogger(cfg.Logger),
		ingest.WithMetrics(cfg.Metrics),
	}
	if cfg.Adapter != nil {
		ingestOpts = append(ingestOpts, ingest.WithAdapter(cfg.Adapter, cfg.ID))
	}
	ingestOpts = append(ingestOpts, cfg.IngestOptions...)

	return &Session{
		ID:     cfg.ID,
		Ingest: ingest.New(cfg.Gateway, ingestOpts...),
		Chat: conversation.New(cfg.Gateway,
			conversation.WithLogger(cfg.Logger),
			conversation.WithMetrics(cfg.Metrics),
		),
		Metrics: cfg.Metrics,
		gw:      cfg.Gateway,
		adapter: cfg.Adapter,
		logger:  cfg.Logger,
	}, nil
}

// CanAsk reports whether the chat input should be enabled: the document is
// indexed and no question is in flight.
func (s *Session) CanAsk() bool {
	return s.Ingest.IndexReady() && !s.Chat.Snapshot().InFlight
}

// Ask submits a question once the document is indexed.
func (s *Session) Ask(ctx context.Context, text string) (types.Turn, error) {
	if !s.Ingest.IndexReady() {
		return types.Turn{}, ErrNotReady
	}
	return s.Chat.Submit(ctx, text)
}

// Reset clears the backend document slot and the transcript. Unlike
// Ingest.ClearAll it does not require a locally uploaded document, so a
// one-shot command can clear what an earlier process uploaded.
func (s *Session) Reset(ctx context.Context) error {
	if s.Ingest.Snapshot().Uploaded != nil {
		if err := s.Ingest.ClearAll(ctx); err != nil {
			return err
		}
		s.Chat.Clear()
		return nil
	}

	err := s.gw.Clear(ctx)
	s.Metrics.ObserveCall(gateway.OpClear, err, errors.Is(err, gateway.ErrTransport))
	if err != nil {
		s.logger.Error("reset failed", map[string]any{"error": err.Error()})
		return err
	}
	s.Metrics.IncClear()
	s.Chat.Clear()
	s.logger.Info("backend reset", nil)
	return nil
}

// Health queries the backend health endpoint when the gateway supports it.
func (s *Session) Health(ctx context.Context) (*gateway.HealthStatus, error) {
	hc, ok := s.gw.(gateway.HealthChecker)
	if !ok {
		return nil, errors.New("session: gateway does not report health")
	}
	return hc.Health(ctx)
}

// Close releases the adapter and the gateway.
func (s *Session) Close() error {
	var errs []error
	if s.adapter != nil {
		errs = append(errs, s.adapter.Close())
	}
	if c, ok := s.gw.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
