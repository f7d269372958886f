package lsp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStream_RoundTrip(t *testing.T) {
	payload := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	var buf bytes.Buffer
	if err := newStream(strings.NewReader(""), &buf).write(payload); err != nil {
		t.Fatalf("write() error: %v", err)
	}
	got, err := newStream(&buf, nil).read()
	if err != nil {
		t.Fatalf("read() error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip = %q, want %q", got, payload)
	}
}

func TestStream_ExtraHeaders(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n\r\n{}"
	got, err := newStream(strings.NewReader(raw), nil).read()
	if err != nil {
		t.Fatalf("read() error: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("payload = %q, want {}", got)
	}
}

func TestStream_MissingContentLength(t *testing.T) {
	raw := "Content-Type: application/json\r\n\r\n{}"
	_, err := newStream(strings.NewReader(raw), nil).read()
	if !errors.Is(err, errNoContentLength) {
		t.Errorf("read() error = %v, want %v", err, errNoContentLength)
	}
}

func TestStream_BadContentLength(t *testing.T) {
	raw := "Content-Length: many\r\n\r\n{}"
	if _, err := newStream(strings.NewReader(raw), nil).read(); err == nil {
		t.Error("read() accepted a non-numeric Content-Length")
	}
}
