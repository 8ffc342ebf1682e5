package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/ingest"
	"github.com/pithecene-io/docqa/types"
)

// runApp runs the CLI with args and returns stdout and the action error.
// The working directory is a fresh temp dir so no docqa.yaml is picked up.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	app := NewApp("test")
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"docqa"}, args...))
	return out.String(), err
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return exitSuccess
	}
	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("error %v is not a cli.ExitCoder", err)
	}
	return coder.ExitCode()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// backend is a minimal HTTP backend. Handlers not set return 404.
func backend(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFlags(t *testing.T) {
	want := map[string]bool{"config": true, "base-url": true, "timeout": true, "stub": true, "log-level": true, "log-file": true}
	for _, f := range GlobalFlags() {
		delete(want, f.Names()[0])
	}
	if len(want) != 0 {
		t.Errorf("missing global flags: %v", want)
	}

	names := map[string]bool{}
	for _, f := range OutputFlags() {
		names[f.Names()[0]] = true
	}
	if !names["format"] || !names["no-color"] {
		t.Errorf("OutputFlags = %v", names)
	}
}

func TestVersion(t *testing.T) {
	out, err := runApp(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}

	var resp VersionResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Version != types.Version || resp.Commit != "test" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUpload_Stub(t *testing.T) {
	path := writeFile(t, "notes.txt", "the quick brown fox")

	out, err := runApp(t, "--stub", "upload", "--format", "json", path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	var resp UploadResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Name != "notes.txt" || resp.Extension != "txt" {
		t.Errorf("name/extension = %q/%q", resp.Name, resp.Extension)
	}
	if resp.State != string(types.StateReady) {
		t.Errorf("state = %q", resp.State)
	}
	if resp.Size != "19.00 Bytes" {
		t.Errorf("size = %q", resp.Size)
	}
}

func TestUpload_HTTP(t *testing.T) {
	var uploadedName string
	srv := backend(t, map[string]http.HandlerFunc{
		"POST /upload": func(w http.ResponseWriter, r *http.Request) {
			_, hdr, err := r.FormFile("file")
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
				return
			}
			uploadedName = hdr.Filename
			writeJSON(w, http.StatusOK, map[string]string{"status": "success", "file_path": "data/uploads/" + hdr.Filename})
		},
		"POST /index": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Indexed 1 documents"})
		},
	})

	out, err := runApp(t, "--base-url", srv.URL, "upload", "--format", "json", writeFile(t, "report.pdf", "%PDF-1.4\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if uploadedName != "report.pdf" {
		t.Errorf("server saw %q", uploadedName)
	}

	var resp UploadResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.StoragePath != "data/uploads/report.pdf" || resp.Message != "Indexed 1 documents" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUpload_IndexFailureSurfacesDetail(t *testing.T) {
	srv := backend(t, map[string]http.HandlerFunc{
		"POST /upload": func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseMultipartForm(1 << 20)
			writeJSON(w, http.StatusOK, map[string]string{"status": "success", "file_path": "data/uploads/a.txt"})
		},
		"POST /index": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "timeout"})
		},
	})

	_, err := runApp(t, "--base-url", srv.URL, "upload", writeFile(t, "a.txt", "x"))
	if code := exitCodeOf(t, err); code != exitOperation {
		t.Fatalf("exit code = %d, want %d", code, exitOperation)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error = %q, want index detail", err)
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing path",
			args:     func(*testing.T) []string { return []string{"--stub", "upload"} },
			wantCode: exitOperation,
			wantMsg:  "file path required",
		},
		{
			name: "unsupported type",
			args: func(t *testing.T) []string {
				return []string{"--stub", "upload", writeFile(t, "image.png", "\x89PNG\r\n\x1a\n")}
			},
			wantCode: exitOperation,
			wantMsg:  "Unsupported file type",
		},
		{
			name: "backend unreachable",
			args: func(t *testing.T) []string {
				srv := httptest.NewServer(http.NotFoundHandler())
				srv.Close()
				return []string{"--base-url", srv.URL, "upload", writeFile(t, "a.txt", "x")}
			},
			wantCode: exitTransport,
			wantMsg:  ingest.MsgUploadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args(t)...)
			if code := exitCodeOf(t, err); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err %v)", code, tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestAsk_HTTP(t *testing.T) {
	var asked []string
	srv := backend(t, map[string]http.HandlerFunc{
		"POST /ask": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Question string `json:"question"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			asked = append(asked, body.Question)
			writeJSON(w, http.StatusOK, map[string]any{
				"answer":       "Answer to " + body.Question,
				"source_nodes": []map[string]any{{"text": "excerpt", "score": 0.9}},
			})
		},
	})

	out, err := runApp(t, "--base-url", srv.URL, "ask", "--format", "json", "first?", "second?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(asked) != 2 || asked[0] != "first?" || asked[1] != "second?" {
		t.Errorf("asked = %v", asked)
	}

	var turns []types.Turn
	if err := json.Unmarshal([]byte(out), &turns); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}
	if turns[3].Content != "Answer to second?" || len(turns[3].Sources) != 1 {
		t.Errorf("last turn = %+v", turns[3])
	}
}

func TestAsk_NoDocument(t *testing.T) {
	out, err := runApp(t, "--stub", "ask", "--format", "json", "anything?")
	if code := exitCodeOf(t, err); code != exitOperation {
		t.Fatalf("exit code = %d, want %d", code, exitOperation)
	}
	if !strings.Contains(err.Error(), gateway.MessageNoDocuments) {
		t.Errorf("error = %q", err)
	}
	if !strings.Contains(out, gateway.MessageNoDocuments) {
		t.Errorf("transcript should carry the failure text, got %q", out)
	}
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := runApp(t, "--stub", "ask")
	if code := exitCodeOf(t, err); code != exitOperation {
		t.Fatalf("exit code = %d", code)
	}
}

func TestClear(t *testing.T) {
	var deletes int
	srv := backend(t, map[string]http.HandlerFunc{
		"DELETE /delete": func(w http.ResponseWriter, _ *http.Request) {
			deletes++
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
		},
	})

	out, err := runApp(t, "--base-url", srv.URL, "clear", "--format", "json")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deletes != 1 {
		t.Errorf("deletes = %d", deletes)
	}
	if !strings.Contains(out, ingest.MsgCleared) {
		t.Errorf("output = %q", out)
	}
}

func TestClear_Failure(t *testing.T) {
	srv := backend(t, map[string]http.HandlerFunc{
		"DELETE /delete": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "disk busy"})
		},
	})

	_, err := runApp(t, "--base-url", srv.URL, "clear")
	if code := exitCodeOf(t, err); code != exitOperation {
		t.Fatalf("exit code = %d", code)
	}
	if err.Error() != ingest.MsgClearFailed {
		t.Errorf("error = %q", err)
	}
}

func TestHealth(t *testing.T) {
	out, err := runApp(t, "--stub", "health", "--format", "yaml")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "status: healthy") {
		t.Errorf("output = %q", out)
	}
}

func TestHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := runApp(t, "--base-url", srv.URL, "health")
	if code := exitCodeOf(t, err); code != exitTransport {
		t.Fatalf("exit code = %d, want %d", code, exitTransport)
	}
}

func TestConfigErrors(t *testing.T) {
	bad := writeFile(t, "docqa.yaml", "bogus: 1\n")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"--config", bad, "health"}},
		{"missing file", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "health"}},
		{"bad log level", []string{"--stub", "--log-level", "loud", "health"}},
		{"bad base url", []string{"--base-url", "localhost:8000", "health"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if code := exitCodeOf(t, err); code != exitConfig {
				t.Fatalf("exit code = %d, want %d (err %v)", code, exitConfig, err)
			}
		})
	}
}

func TestConfigFile_StubAndFlagOverride(t *testing.T) {
	cfg := writeFile(t, "docqa.yaml", "gateway:\n  stub: true\nlog:\n  level: error\n")

	out, err := runApp(t, "--config", cfg, "health", "--format", "json")
	if err != nil {
		t.Fatalf("health via config stub: %v", err)
	}
	if !strings.Contains(out, `"healthy"`) {
		t.Errorf("output = %q", out)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"transport", gateway.NewTransportError(gateway.OpAsk, errors.New("refused")), exitTransport},
		{"server", gateway.NewServerError(gateway.OpAsk, 500, "Internal Server Error", "boom", ""), exitOperation},
		{"validation", ingest.ErrUnsupportedFile, exitOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFail(t *testing.T) {
	if fail(nil, "x") != nil {
		t.Error("fail(nil) should be nil")
	}

	passthrough := cli.Exit("already", 7)
	if got := fail(passthrough, ""); got != passthrough {
		t.Errorf("ExitCoder should pass through, got %v", got)
	}

	err := fail(gateway.NewServerError(gateway.OpIndex, 500, "Internal Server Error", "timeout", ""), "")
	if err.Error() != "timeout" {
		t.Errorf("server failure message = %q", err)
	}
}
