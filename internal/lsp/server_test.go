package lsp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

// script builds one framed client->server stream from raw JSON bodies.
func script(t *testing.T, bodies ...string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	conn := newStream(strings.NewReader(""), &buf)
	for _, body := range bodies {
		if err := conn.write([]byte(body)); err != nil {
			t.Fatalf("frame script: %v", err)
		}
	}
	return &buf
}

// decodeFrames parses every server->client frame.
func decodeFrames(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	conn := newStream(out, nil)
	var msgs []rpcMessage
	for {
		payload, err := conn.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return msgs
			}
			t.Fatalf("decode server frame: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal server frame: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func publishes(t *testing.T, msgs []rpcMessage) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p publishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &p); err != nil {
			t.Fatalf("unmarshal publish params: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestServer_Lifecycle(t *testing.T) {
	in := script(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"rootUri":"file:///tmp/repo"}}`,
		`{"jsonrpc":"2.0","method":"initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	var out bytes.Buffer
	srv := NewServer(in, &out, nil, nil)
	if err := srv.Run(); !errors.Is(err, ErrExit) {
		t.Fatalf("Run() = %v, want ErrExit", err)
	}

	msgs := decodeFrames(t, &out)
	if len(msgs) != 2 {
		t.Fatalf("got %d responses, want initialize + shutdown", len(msgs))
	}
	var init initializeResult
	if err := json.Unmarshal(msgs[0].Result, &init); err != nil {
		t.Fatalf("initialize result: %v", err)
	}
	if init.ServerInfo.Name != "gantry" {
		t.Errorf("server name = %q", init.ServerInfo.Name)
	}
	if init.Capabilities.TextDocumentSync.Change != 1 {
		t.Errorf("sync kind = %d, want full sync", init.Capabilities.TextDocumentSync.Change)
	}
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	in := script(t, `{"jsonrpc":"2.0","method":"exit"}`)
	var out bytes.Buffer
	srv := NewServer(in, &out, nil, nil)
	if err := srv.Run(); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("Run() = %v, want ErrExitWithoutShutdown", err)
	}
}

func TestServer_DidOpenPublishes(t *testing.T) {
	doc := "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    needs: ghost\n"
	open := mustJSON(t, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": didOpenTextDocumentParams{TextDocument: textDocumentItem{
			URI: "file:///tmp/ci.yml", LanguageID: "yaml", Version: 1, Text: doc,
		}},
	})
	in := script(t, open)
	var out bytes.Buffer
	srv := NewServer(in, &out, nil, nil)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	pubs := publishes(t, decodeFrames(t, &out))
	if len(pubs) != 1 {
		t.Fatalf("got %d publishes, want 1", len(pubs))
	}
	p := pubs[0]
	if p.URI != "file:///tmp/ci.yml" {
		t.Errorf("uri = %q", p.URI)
	}
	found := false
	for _, d := range p.Diagnostics {
		if d.Code == "job_needs" && strings.Contains(d.Message, "ghost") {
			found = true
			if d.Severity != 1 {
				t.Errorf("job_needs severity = %d, want 1 (error)", d.Severity)
			}
			if d.Source != "gantry" {
				t.Errorf("source = %q", d.Source)
			}
		}
	}
	if !found {
		t.Errorf("missing ghost-reference diagnostic in %+v", p.Diagnostics)
	}
}

func TestServer_ChangeThenCloseClears(t *testing.T) {
	openDoc := "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    needs: ghost\n"
	fixedDoc := "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n"
	open := mustJSON(t, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": didOpenTextDocumentParams{TextDocument: textDocumentItem{
			URI: "file:///tmp/ci.yml", Version: 1, Text: openDoc,
		}},
	})
	change := mustJSON(t, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didChange",
		"params": didChangeTextDocumentParams{
			TextDocument:   versionedTextDocumentIdentifier{URI: "file:///tmp/ci.yml", Version: 2},
			ContentChanges: []textDocumentContentChangeEvent{{Text: fixedDoc}},
		},
	})
	closeDoc := mustJSON(t, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didClose",
		"params": didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: "file:///tmp/ci.yml"}},
	})
	in := script(t, open, change, closeDoc)
	var out bytes.Buffer
	srv := NewServer(in, &out, nil, nil)
	if err := srv.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	pubs := publishes(t, decodeFrames(t, &out))
	if len(pubs) != 3 {
		t.Fatalf("got %d publishes, want open+change+close", len(pubs))
	}
	if len(pubs[0].Diagnostics) == 0 {
		t.Error("open publish carried no diagnostics")
	}
	if len(pubs[1].Diagnostics) != 0 {
		t.Errorf("fixed document still has diagnostics: %+v", pubs[1].Diagnostics)
	}
	if len(pubs[2].Diagnostics) != 0 {
		t.Errorf("close publish did not clear: %+v", pubs[2].Diagnostics)
	}
}
