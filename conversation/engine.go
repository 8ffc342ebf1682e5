// Package conversation keeps the question/answer transcript for the indexed
// document and mediates each question through the gateway.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/log"
	"github.com/pithecene-io/docqa/metrics"
	"github.com/pithecene-io/docqa/types"
)

var (
	// ErrEmptyQuestion means the submitted text was blank after trimming.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrInFlight means an earlier question has not been answered yet.
	ErrInFlight = errors.New("a question is already in flight")
	// ErrDiscarded means the transcript was cleared while the question was
	// in flight; the answer was dropped.
	ErrDiscarded = errors.New("answer discarded: conversation cleared")
)

// NoAnswer replaces an empty answer from the backend.
const NoAnswer = "Sorry, I couldn't find an answer."

// MsgCleared is the notice shown after Clear.
const MsgCleared = "Chat cleared"

// State is a point-in-time copy of the conversation.
type State struct {
	Transcript []types.Turn `json:"transcript"`
	InFlight   bool         `json:"in_flight"`
}

// PendingIndex returns the index of the pending answer, or -1.
func (s State) PendingIndex() int {
	for i, t := range s.Transcript {
		if t.IsPendingAnswer() {
			return i
		}
	}
	return -1
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics collector. A nil collector is valid.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithIDs replaces uuid.NewString for turn IDs.
func WithIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// Engine owns the transcript. At most one question is in flight; its
// answer slot is always the last turn. Safe for concurrent use.
type Engine struct {
	gw      gateway.Gateway
	logger  *log.Logger
	metrics *metrics.Collector
	newID   func() string

	mu         sync.Mutex
	transcript []types.Turn
	pending    int // index of the pending answer, -1 when idle
	generation uint64
}

// New creates an engine with an empty transcript.
func New(gw gateway.Gateway, opts ...Option) *Engine {
	e := &Engine{
		gw:      gw,
		logger:  log.Nop(),
		newID:   uuid.NewString,
		pending: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("conversation")
	return e
}

// Snapshot returns a copy of the transcript and the in-flight flag.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Transcript: cloneTurns(e.transcript),
		InFlight:   e.pending >= 0,
	}
}

// Submit asks a question. Empty text and submits while a question is in
// flight are rejected without touching the transcript or the network.
//
// On a gateway failure the answer slot is settled with a readable message
// and the error is returned alongside the settled turn.
func (e *Engine) Submit(ctx context.Context, text string) (types.Turn, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		e.metrics.IncRejectedSubmit()
		return types.Turn{}, ErrEmptyQuestion
	}

	e.mu.Lock()
	if e.pending >= 0 {
		e.mu.Unlock()
		e.metrics.IncRejectedSubmit()
		return types.Turn{}, ErrInFlight
	}
	e.transcript = append(e.transcript,
		types.Turn{ID: e.newID(), Role: types.RoleQuestion, Content: question},
		types.Turn{ID: e.newID(), Role: types.RoleAnswer, Pending: true},
	)
	e.pending = len(e.transcript) - 1
	gen := e.generation
	e.mu.Unlock()

	e.metrics.IncQuestion()
	e.logger.Debug("question submitted", map[string]any{"length": len(question)})

	res, err := e.gw.Ask(ctx, text)
	e.metrics.ObserveCall(gateway.OpAsk, err, errors.Is(err, gateway.ErrTransport))

	var settled types.Turn
	switch {
	case err != nil:
		settled = types.Turn{Role: types.RoleAnswer, Content: gateway.Describe(err)}
		e.logger.Warn("ask failed", map[string]any{"error": err.Error()})
	case strings.TrimSpace(res.Answer) == "":
		settled = types.Turn{Role: types.RoleAnswer, Content: NoAnswer, Sources: res.Sources}
	default:
		settled = types.Turn{Role: types.RoleAnswer, Content: res.Answer, Sources: res.Sources}
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.metrics.IncAnswerDiscarded()
		e.logger.Debug("answer discarded after clear", nil)
		return types.Turn{}, ErrDiscarded
	}
	settled.ID = e.transcript[e.pending].ID
	e.transcript[e.pending] = settled
	e.pending = -1
	e.mu.Unlock()

	if err == nil {
		e.metrics.IncAnswer()
	}
	return settled, err
}

// Clear drops the transcript. An answer still in flight is discarded when
// it arrives. No network call is made.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.transcript = nil
	e.pending = -1
	e.generation++
	e.mu.Unlock()

	e.logger.Debug("conversation cleared", nil)
}

func cloneTurns(in []types.Turn) []types.Turn {
	if in == nil {
		return nil
	}
	out := make([]types.Turn, len(in))
	for i, t := range in {
		out[i] = t
		if t.Sources != nil {
			out[i].Sources = append([]types.Source(nil), t.Sources...)
		}
	}
	return out
}
