// Package ingest owns the lifecycle of the single document: selection,
// upload, indexing and global clear.
//
// Upload and index run as an explicit two-step pipeline. Each step moves the
// controller into its running state, calls the gateway without holding the
// lock, then settles into the step's success or error state. Callers observe
// every transition through Snapshot or an OnChange hook.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pithecene-io/docqa/adapter"
	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/iox"
	"github.com/pithecene-io/docqa/log"
	"github.com/pithecene-io/docqa/metrics"
	"github.com/pithecene-io/docqa/types"
)

// Sentinel errors returned without any network call.
var (
	// ErrUnsupportedFile means the file is not a .pdf, .doc, .docx or .txt.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrInvalidState means the operation is not valid in the current state.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrBusy means an upload, index or clear is already running.
	ErrBusy = errors.New("ingestion step in progress")
	// ErrNoSelection means upload was requested with no file selected.
	ErrNoSelection = errors.New("no file selected")
)

// User-facing notice texts.
const (
	MsgSelectFirst     = "Please select a file first!"
	MsgUploaded        = "File uploaded successfully!"
	MsgUploadFailed    = "Upload failed. Please try again."
	MsgIndexed         = "Document indexed successfully!"
	MsgIndexFailed     = "Indexing failed. Please try again."
	MsgCleared         = "All files and index cleared."
	MsgClearFailed     = "Failed to clear files/index."
	msgUnsupportedFile = "Unsupported file type. Supported formats: PDF, DOC, DOCX, TXT."
)

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State      types.IngestionState    `json:"state"`
	Selected   *types.SelectedFile     `json:"selected,omitempty"`
	Uploaded   *types.UploadedDocument `json:"uploaded,omitempty"`
	IndexReady bool                    `json:"index_ready"`
	Notice     *types.Notice           `json:"notice,omitempty"`
	// IndexMessage is the backend's index summary, e.g. "Indexed 1 documents".
	IndexMessage string `json:"index_message,omitempty"`
}

// Opener opens a selected file's content for upload.
type Opener func(path string) (io.ReadCloser, error)

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics sets the metrics collector. A nil collector is valid.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithAdapter publishes lifecycle events to a after terminal transitions.
func WithAdapter(a adapter.Adapter, sessionID string) Option {
	return func(c *Controller) {
		c.adapter = a
		c.sessionID = sessionID
	}
}

// WithOpener replaces os.Open for reading selected files.
func WithOpener(o Opener) Option {
	return func(c *Controller) { c.open = o }
}

// OnChange registers fn to receive a snapshot after every transition.
// fn is called without the controller lock held.
func OnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller is the ingestion state machine. Safe for concurrent use.
type Controller struct {
	gw        gateway.Gateway
	logger    *log.Logger
	metrics   *metrics.Collector
	adapter   adapter.Adapter
	sessionID string
	open      Opener
	onChange  func(Snapshot)
	now       func() time.Time

	mu         sync.Mutex
	state      types.IngestionState
	selected   *types.SelectedFile
	uploaded   *types.UploadedDocument
	indexReady bool
	notice     *types.Notice
	indexMsg   string
}

// New creates a controller in the empty state.
func New(gw gateway.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:     gw,
		logger: log.Nop(),
		open:   openFile,
		now:    time.Now,
		state:  types.StateEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("ingest")
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:        c.state,
		IndexReady:   c.indexReady,
		IndexMessage: c.indexMsg,
	}
	if c.selected != nil {
		sel := *c.selected
		s.Selected = &sel
	}
	if c.uploaded != nil {
		doc := *c.uploaded
		s.Uploaded = &doc
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	return s
}

// IndexReady reports whether questions may be asked.
func (c *Controller) IndexReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexReady
}

// SelectFile makes f the pending selection, replacing any previous one.
// Valid in every idle state. Selecting after an upload clears index-ready;
// the uploaded document stays visible until the next upload replaces it.
// No network call is made.
func (c *Controller) SelectFile(f types.SelectedFile) error {
	c.mu.Lock()
	if c.state.IsBusy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if !types.IsSupported(f.Name) {
		c.notice = &types.Notice{Level: types.NoticeWarning, Text: msgUnsupportedFile}
		c.mu.Unlock()
		c.changed()
		return fmt.Errorf("%s: %w", f.Name, ErrUnsupportedFile)
	}

	sel := f
	c.selected = &sel
	c.state = types.StateSelected
	c.indexReady = false
	c.indexMsg = ""
	c.notice = nil
	c.mu.Unlock()

	c.logger.Debug("file selected", map[string]any{"name": f.Name, "size": f.Size, "mime_type": f.MIMEType})
	c.changed()
	return nil
}

// RemoveFile drops the pending selection. Valid only in the selected state.
func (c *Controller) RemoveFile() error {
	c.mu.Lock()
	if c.state.IsBusy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != types.StateSelected {
		c.mu.Unlock()
		return fmt.Errorf("remove in state %s: %w", c.state, ErrInvalidState)
	}
	c.selected = nil
	c.state = types.StateEmpty
	c.indexReady = false
	c.notice = nil
	c.mu.Unlock()

	c.changed()
	return nil
}

// UploadAndIndex uploads the selection and, on success, indexes it.
// A failed upload never triggers indexing. Gateway failures are recorded
// in the snapshot notice and also returned.
func (c *Controller) UploadAndIndex(ctx context.Context) error {
	sel, err := c.beginUpload()
	if err != nil {
		if errors.Is(err, ErrNoSelection) {
			c.changed()
		}
		return err
	}

	start := c.now()
	doc, err := c.uploadStep(ctx, sel)
	if err != nil {
		c.publish(ctx, start, &adapter.LifecycleEvent{
			EventType:    adapter.EventIngestionFailed,
			DocumentName: sel.Name,
			DocumentType: sel.MIMEType,
			DocumentSize: sel.Size,
			Stage:        adapter.StageUpload,
			Message:      MsgUploadFailed,
		})
		return err
	}

	msg, err := c.indexStep(ctx)
	event := documentEvent(adapter.EventDocumentIndexed, doc, msg)
	if err != nil {
		event.EventType = adapter.EventIngestionFailed
		event.Stage = adapter.StageIndex
	}
	c.publish(ctx, start, event)
	return err
}

func (c *Controller) beginUpload() (types.SelectedFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsBusy() {
		return types.SelectedFile{}, ErrBusy
	}
	if c.selected == nil {
		c.notice = &types.Notice{Level: types.NoticeWarning, Text: MsgSelectFirst}
		return types.SelectedFile{}, ErrNoSelection
	}
	if c.state != types.StateSelected && c.state != types.StateError {
		return types.SelectedFile{}, fmt.Errorf("upload in state %s: %w", c.state, ErrInvalidState)
	}

	c.state = types.StateUploading
	c.notice = nil
	return *c.selected, nil
}

// uploadStep runs step one. On failure the selection is kept so the user
// can retry.
func (c *Controller) uploadStep(ctx context.Context, sel types.SelectedFile) (types.UploadedDocument, error) {
	c.changed()

	res, err := c.upload(ctx, sel)
	if err != nil {
		c.mu.Lock()
		c.state = types.StateError
		c.notice = &types.Notice{Level: types.NoticeError, Text: MsgUploadFailed}
		c.mu.Unlock()

		c.metrics.IncIngestFailure()
		c.logger.Error("upload failed", map[string]any{"name": sel.Name, "error": err.Error()})
		c.changed()
		return types.UploadedDocument{}, err
	}

	doc := types.NewUploadedDocument(sel, res.FilePath)
	c.mu.Lock()
	c.uploaded = &doc
	c.state = types.StateUploaded
	c.notice = &types.Notice{Level: types.NoticeSuccess, Text: MsgUploaded}
	c.mu.Unlock()

	c.logger.Info("file uploaded", map[string]any{"name": doc.Name, "storage_path": doc.StoragePath})
	c.changed()
	return doc, nil
}

func (c *Controller) upload(ctx context.Context, sel types.SelectedFile) (*gateway.UploadResult, error) {
	rc, err := c.open(sel.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sel.Path, err)
	}
	defer iox.DiscardClose(rc)

	res, err := c.gw.Upload(ctx, gateway.UploadRequest{Name: sel.Name, MIMEType: sel.MIMEType, Content: rc})
	c.observe(gateway.OpUpload, err)
	return res, err
}

// indexStep runs step two and returns the message recorded in the notice.
// On failure the uploaded document is kept and index-ready stays false.
func (c *Controller) indexStep(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.state = types.StateIndexing
	c.mu.Unlock()
	c.changed()

	res, err := c.gw.Index(ctx)
	c.observe(gateway.OpIndex, err)
	if err != nil {
		msg := gateway.DescribeOr(err, MsgIndexFailed)
		c.mu.Lock()
		c.state = types.StateError
		c.indexReady = false
		c.notice = &types.Notice{Level: types.NoticeError, Text: msg}
		c.mu.Unlock()

		c.metrics.IncIngestFailure()
		c.logger.Error("index failed", map[string]any{"error": err.Error()})
		c.changed()
		return msg, err
	}

	c.mu.Lock()
	c.state = types.StateReady
	c.indexReady = true
	c.indexMsg = res.Message
	c.notice = &types.Notice{Level: types.NoticeSuccess, Text: MsgIndexed}
	c.mu.Unlock()

	c.metrics.IncDocumentIndexed()
	c.logger.Info("document indexed", map[string]any{"message": res.Message})
	c.changed()
	return MsgIndexed, nil
}

// ClearAll deletes every server-side document and the index. Valid while a
// document is uploaded and no step is running. On failure the previous state
// is restored.
func (c *Controller) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	if c.state.IsBusy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.uploaded == nil {
		c.mu.Unlock()
		return fmt.Errorf("clear in state %s: %w", c.state, ErrInvalidState)
	}
	prev := c.state
	doc := *c.uploaded
	c.state = types.StateClearing
	c.notice = nil
	c.mu.Unlock()
	c.changed()

	start := c.now()
	err := c.gw.Clear(ctx)
	c.observe(gateway.OpClear, err)

	c.mu.Lock()
	if err != nil {
		c.state = prev
		c.notice = &types.Notice{Level: types.NoticeError, Text: MsgClearFailed}
	} else {
		c.state = types.StateEmpty
		c.selected = nil
		c.uploaded = nil
		c.indexReady = false
		c.indexMsg = ""
		c.notice = &types.Notice{Level: types.NoticeSuccess, Text: MsgCleared}
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.logger.Error("clear failed", map[string]any{"error": err.Error()})
		return err
	}
	c.metrics.IncClear()
	c.logger.Info("documents cleared", nil)
	c.publish(ctx, start, documentEvent(adapter.EventDocumentsCleared, doc, MsgCleared))
	return nil
}

func (c *Controller) observe(op string, err error) {
	c.metrics.ObserveCall(op, err, errors.Is(err, gateway.ErrTransport))
}

func (c *Controller) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}

func documentEvent(eventType string, doc types.UploadedDocument, msg string) *adapter.LifecycleEvent {
	return &adapter.LifecycleEvent{
		EventType:    eventType,
		DocumentName: doc.Name,
		DocumentType: doc.Type,
		DocumentSize: doc.Size,
		StoragePath:  doc.StoragePath,
		Message:      msg,
	}
}

// publish fills in the common fields and delivers event. Failures are
// logged and counted only.
func (c *Controller) publish(ctx context.Context, start time.Time, event *adapter.LifecycleEvent) {
	if c.adapter == nil {
		return
	}
	now := c.now()
	event.ContractVersion = types.ContractVersion
	event.SessionID = c.sessionID
	event.Timestamp = now.UTC().Format(time.RFC3339)
	event.DurationMs = now.Sub(start).Milliseconds()

	if err := c.adapter.Publish(context.WithoutCancel(ctx), event); err != nil {
		c.metrics.IncNotifyFailure()
		c.logger.Warn("lifecycle notification failed", map[string]any{"event_type": event.EventType, "error": err.Error()})
		return
	}
	c.metrics.IncNotifySuccess()
}
