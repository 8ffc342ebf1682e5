// Package stub provides an in-memory backend with the same single-document
// semantics as the real service. Use it in tests and for offline demos
// (docqa --stub).
package stub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/types"
)

// Details returned by the stub, matching the real backend's wording.
const (
	DetailNothingToIndex = "No documents found. Please upload files first."
	DetailNotIndexed     = "Failed to get answer: 400: No documents found. Please upload and index documents first."
)

// Answerer produces an answer for a question about the named document.
type Answerer func(document, question string) string

// DefaultAnswerer echoes the question back with the document name.
func DefaultAnswerer(document, question string) string {
	return fmt.Sprintf("Based on %s: this is a stub answer to %q.", document, question)
}

// Gateway is an in-memory single-document backend.
// Safe for concurrent use.
type Gateway struct {
	mu       sync.Mutex
	answerer Answerer
	latency  time.Duration

	// The single server-side document slot.
	docName  string
	uploaded bool
	indexed  bool

	calls    map[string]int
	failures map[string][]error
	gates    map[string][]*Gate
}

// Option configures a stub Gateway.
type Option func(*Gateway)

// WithAnswerer replaces DefaultAnswerer.
func WithAnswerer(a Answerer) Option {
	return func(g *Gateway) { g.answerer = a }
}

// WithLatency delays every operation, e.g. so spinners are visible in demos.
func WithLatency(d time.Duration) Option {
	return func(g *Gateway) { g.latency = d }
}

// New creates an empty stub backend.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		answerer: DefaultAnswerer,
		calls:    make(map[string]int),
		failures: make(map[string][]error),
		gates:    make(map[string][]*Gate),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FailNext makes the next call of op return err. Calls queue in order.
func (g *Gateway) FailNext(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[op] = append(g.failures[op], err)
}

// Hold makes the next call of op block until the returned gate is released
// or the call's context is done.
func (g *Gateway) Hold(op string) *Gate {
	gate := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	g.mu.Lock()
	g.gates[op] = append(g.gates[op], gate)
	g.mu.Unlock()
	return gate
}

// Calls returns how many times op has been invoked.
func (g *Gateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// Indexed reports whether the current document has been indexed.
func (g *Gateway) Indexed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.indexed
}

// Document returns the current document name, or "" when none is uploaded.
func (g *Gateway) Document() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.docName
}

// Upload stores the file as the current document and drops any index.
func (g *Gateway) Upload(ctx context.Context, req gateway.UploadRequest) (*gateway.UploadResult, error) {
	if err := g.enter(ctx, gateway.OpUpload); err != nil {
		return nil, err
	}

	if req.Content != nil {
		if _, err := io.Copy(io.Discard, req.Content); err != nil {
			return nil, gateway.NewServerError(gateway.OpUpload, http.StatusInternalServerError,
				http.StatusText(http.StatusInternalServerError), fmt.Sprintf("Upload failed: %v", err), "")
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.docName = req.Name
	g.uploaded, g.indexed = true, false
	return &gateway.UploadResult{
		Status:   gateway.StatusSuccess,
		FilePath: path.Join("data", "uploads", req.Name),
	}, nil
}

// Index marks the current document as indexed.
func (g *Gateway) Index(ctx context.Context) (*gateway.IndexResult, error) {
	if err := g.enter(ctx, gateway.OpIndex); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.uploaded {
		return nil, gateway.NewServerError(gateway.OpIndex, http.StatusBadRequest,
			http.StatusText(http.StatusBadRequest), DetailNothingToIndex, "")
	}
	g.indexed = true
	return &gateway.IndexResult{Status: gateway.StatusSuccess, Message: "Indexed 1 documents"}, nil
}

// Ask answers against the current index.
func (g *Gateway) Ask(ctx context.Context, question string) (*gateway.AskResult, error) {
	if err := g.enter(ctx, gateway.OpAsk); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.indexed {
		return nil, gateway.NewServerError(gateway.OpAsk, http.StatusInternalServerError,
			http.StatusText(http.StatusInternalServerError), DetailNotIndexed, "")
	}
	return &gateway.AskResult{
		Question: question,
		Answer:   g.answerer(g.docName, question),
		Sources:  []types.Source{{Text: "Excerpt from " + g.docName, Score: 1}},
	}, nil
}

// Clear empties the document slot.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.enter(ctx, gateway.OpClear); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.docName = ""
	g.uploaded, g.indexed = false, false
	return nil
}

// Health reports a healthy in-memory backend.
func (g *Gateway) Health(ctx context.Context) (*gateway.HealthStatus, error) {
	if err := g.enter(ctx, gateway.OpHealth); err != nil {
		return nil, err
	}
	return &gateway.HealthStatus{Status: "healthy", LLM: "stub"}, nil
}

// enter counts the call, waits on any gate and latency, then pops a
// queued failure.
func (g *Gateway) enter(ctx context.Context, op string) error {
	g.mu.Lock()
	g.calls[op]++
	var gate *Gate
	if q := g.gates[op]; len(q) > 0 {
		gate, g.gates[op] = q[0], q[1:]
	}
	g.mu.Unlock()

	if gate != nil {
		close(gate.entered)
		select {
		case <-gate.release:
		case <-ctx.Done():
			return gateway.NewTransportError(op, ctx.Err())
		}
	}

	if g.latency > 0 {
		select {
		case <-time.After(g.latency):
		case <-ctx.Done():
			return gateway.NewTransportError(op, ctx.Err())
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if q := g.failures[op]; len(q) > 0 {
		err := q[0]
		g.failures[op] = q[1:]
		return err
	}
	return nil
}

// Gate holds one call of an operation until released.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered is closed once the held call has started.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets the held call continue. Safe to call more than once.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Verify Gateway implements the gateway interfaces.
var (
	_ gateway.Gateway       = (*Gateway)(nil)
	_ gateway.HealthChecker = (*Gateway)(nil)
)
