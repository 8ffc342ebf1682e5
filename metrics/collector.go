// Package metrics provides per-session counters for backend operations.
//
// The Collector is a leaf package with no internal dependencies. Operation
// names are plain strings so callers can pass gateway op names directly.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Backend operations, keyed by op name (upload, index, ask, clear, health)
	Calls            map[string]int64
	Failures         map[string]int64
	TransportFailure int64

	// Ingestion lifecycle
	DocumentsIndexed int64
	IngestFailures   int64
	Clears           int64

	// Conversation
	QuestionsAsked   int64
	AnswersReceived  int64
	AnswersDiscarded int64
	RejectedSubmits  int64

	// Notifications
	NotifySuccess int64
	NotifyFailure int64

	// Dimensions (informational, set at construction)
	SessionID string
	Backend   string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	calls            map[string]int64
	failures         map[string]int64
	transportFailure int64

	documentsIndexed int64
	ingestFailures   int64
	clears           int64

	questionsAsked   int64
	answersReceived  int64
	answersDiscarded int64
	rejectedSubmits  int64

	notifySuccess int64
	notifyFailure int64

	sessionID string
	backend   string
}

// NewCollector creates a Collector with dimension labels.
// backend names the gateway in use ("http" or "stub").
func NewCollector(sessionID, backend string) *Collector {
	return &Collector{
		calls:     make(map[string]int64),
		failures:  make(map[string]int64),
		sessionID: sessionID,
		backend:   backend,
	}
}

// --- Backend operations ---

// ObserveCall records one completed gateway call for op.
// transport marks a failure where no response was received.
func (c *Collector) ObserveCall(op string, err error, transport bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.calls[op]++
	if err != nil {
		c.failures[op]++
		if transport {
			c.transportFailure++
		}
	}
	c.mu.Unlock()
}

// --- Ingestion ---

// IncDocumentIndexed records an upload+index pipeline that reached ready.
func (c *Collector) IncDocumentIndexed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.documentsIndexed++
	c.mu.Unlock()
}

// IncIngestFailure records a pipeline that ended in the error state.
func (c *Collector) IncIngestFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ingestFailures++
	c.mu.Unlock()
}

// IncClear records a successful global clear.
func (c *Collector) IncClear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
}

// --- Conversation ---

// IncQuestion records a question sent to the backend.
func (c *Collector) IncQuestion() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.questionsAsked++
	c.mu.Unlock()
}

// IncAnswer records an answer that settled into the transcript.
func (c *Collector) IncAnswer() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.answersReceived++
	c.mu.Unlock()
}

// IncAnswerDiscarded records a late answer dropped after the chat was cleared.
func (c *Collector) IncAnswerDiscarded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.answersDiscarded++
	c.mu.Unlock()
}

// IncRejectedSubmit records a submit refused as empty or while in flight.
func (c *Collector) IncRejectedSubmit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rejectedSubmits++
	c.mu.Unlock()
}

// --- Notifications ---

// IncNotifySuccess records a lifecycle notification delivered by the adapter.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifySuccess++
	c.mu.Unlock()
}

// IncNotifyFailure records a lifecycle notification the adapter failed to deliver.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Calls:            copyCounts(c.calls),
		Failures:         copyCounts(c.failures),
		TransportFailure: c.transportFailure,

		DocumentsIndexed: c.documentsIndexed,
		IngestFailures:   c.ingestFailures,
		Clears:           c.clears,

		QuestionsAsked:   c.questionsAsked,
		AnswersReceived:  c.answersReceived,
		AnswersDiscarded: c.answersDiscarded,
		RejectedSubmits:  c.rejectedSubmits,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		SessionID: c.sessionID,
		Backend:   c.backend,
	}
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
