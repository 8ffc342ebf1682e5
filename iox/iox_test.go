package iox

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type spyCloser struct{ closed bool }

func (s *spyCloser) Close() error { s.closed = true; return errors.New("ignored") }

type spyReadCloser struct {
	io.Reader
	closed bool
}

func (s *spyReadCloser) Close() error { s.closed = true; return nil }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestDrainClose(t *testing.T) {
	r := strings.NewReader("leftover body")
	rc := &spyReadCloser{Reader: r}
	DrainClose(rc)
	if !rc.closed {
		t.Fatal("Close was not called")
	}
	if r.Len() != 0 {
		t.Errorf("expected body drained, %d bytes left", r.Len())
	}
}

func TestReadCapped(t *testing.T) {
	got, err := ReadCapped(strings.NewReader("0123456789"), 4)
	if err != nil {
		t.Fatalf("ReadCapped: %v", err)
	}
	if string(got) != "0123" {
		t.Errorf("ReadCapped = %q, want 0123", got)
	}
}
