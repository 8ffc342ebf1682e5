package stub

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/docqa/gateway"
)

func TestStub_SingleDocumentLifecycle(t *testing.T) {
	g := New()
	ctx := t.Context()

	if _, err := g.Ask(ctx, "q"); gateway.Describe(err) != gateway.MessageNoDocuments {
		t.Fatalf("ask before index: got %v", err)
	}
	if _, err := g.Index(ctx); !errors.Is(err, gateway.ErrServer) {
		t.Fatalf("index before upload: expected ErrServer, got %v", err)
	}

	res, err := g.Upload(ctx, gateway.UploadRequest{Name: "a.txt", Content: strings.NewReader("hello")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.FilePath != "data/uploads/a.txt" {
		t.Errorf("FilePath = %q", res.FilePath)
	}
	if _, err := g.Index(ctx); err != nil {
		t.Fatalf("index: %v", err)
	}
	ans, err := g.Ask(ctx, "what?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(ans.Answer, "a.txt") {
		t.Errorf("Answer = %q", ans.Answer)
	}

	// A new upload replaces the document and drops the index.
	if _, err := g.Upload(ctx, gateway.UploadRequest{Name: "b.pdf"}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if g.Indexed() {
		t.Error("upload should drop the index")
	}
	if g.Document() != "b.pdf" {
		t.Errorf("Document() = %q", g.Document())
	}

	if err := g.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if g.Document() != "" {
		t.Error("clear should empty the slot")
	}
}

func TestStub_FailNextAndCalls(t *testing.T) {
	g := New()
	boom := gateway.NewServerError(gateway.OpIndex, 500, "", "timeout", "")
	g.FailNext(gateway.OpIndex, boom)

	if _, err := g.Index(t.Context()); !errors.Is(err, boom) {
		t.Fatalf("expected queued failure, got %v", err)
	}
	if _, err := g.Index(t.Context()); errors.Is(err, boom) {
		t.Fatal("failure should be consumed after one call")
	}
	if got := g.Calls(gateway.OpIndex); got != 2 {
		t.Errorf("Calls(index) = %d, want 2", got)
	}
	if got := g.Calls(gateway.OpAsk); got != 0 {
		t.Errorf("Calls(ask) = %d, want 0", got)
	}
}

func TestStub_HoldBlocksUntilRelease(t *testing.T) {
	g := New()
	gate := g.Hold(gateway.OpClear)

	done := make(chan error, 1)
	go func() { done <- g.Clear(context.Background()) }()

	select {
	case <-gate.Entered():
	case <-time.After(5 * time.Second):
		t.Fatal("held call never started")
	}
	select {
	case <-done:
		t.Fatal("held call returned before release")
	default:
	}

	gate.Release()
	gate.Release()
	if err := <-done; err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestStub_HoldHonoursContext(t *testing.T) {
	g := New()
	g.Hold(gateway.OpAsk)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Ask(ctx, "q")
	if !errors.Is(err, gateway.ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected transport deadline error, got %v", err)
	}
}
