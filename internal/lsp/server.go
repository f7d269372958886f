// Package lsp serves workflow diagnostics over the Language Server
// Protocol on stdio. The server keeps full document text per open file
// (full sync), revalidates synchronously on every open and change, and
// pushes the result as textDocument/publishDiagnostics. All analysis
// goes through the engine facade; this package only translates between
// wire shapes and engine types.
package lsp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gantry"
	"gantry/diag"
	"gantry/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// docState is one open document: its current text and the parse
// snapshot handed back by the previous validation, so edits reparse
// incrementally.
type docState struct {
	text    string
	version int
	snap    *gantry.Snapshot
}

// Server handles stdio JSON-RPC for the gantry language server.
type Server struct {
	conn *stream

	mu   sync.Mutex
	docs map[string]*docState

	engine *gantry.Engine
	log    *slog.Logger

	workspaceRoot     string
	shutdownRequested bool
}

// NewServer constructs a server reading requests from in and writing
// responses to out. logger may be nil.
func NewServer(in io.Reader, out io.Writer, engine *gantry.Engine, logger *slog.Logger) *Server {
	if engine == nil {
		engine = gantry.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		conn:   newStream(in, out),
		docs:   make(map[string]*docState),
		engine: engine,
		log:    logger,
	}
}

// Run serves requests until the client disconnects or asks to exit.
func (s *Server) Run() error {
	for {
		payload, err := s.conn.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", "error", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
		return s.sendResponse(msg.ID, nil)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := fileURIPath(params.RootURI)
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = fileURIPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	s.log.Info("initialized", "root", root)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1, // full document sync
			},
		},
		ServerInfo: serverInfo{Name: "gantry", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc := &docState{text: params.TextDocument.Text, version: params.TextDocument.Version}
	s.docs[uri] = doc
	s.mu.Unlock()
	return s.validate(uri, doc)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" || len(params.ContentChanges) == 0 {
		return nil
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &docState{}
		s.docs[uri] = doc
	}
	// Full sync: the last change carries the complete new text.
	doc.text = params.ContentChanges[len(params.ContentChanges)-1].Text
	doc.version = params.TextDocument.Version
	s.mu.Unlock()
	return s.validate(uri, doc)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	// Clear stale markers for the closed document.
	return s.sendPublish(uri, 0, nil)
}

// validate runs the engine over the document's current text and
// publishes the result.
func (s *Server) validate(uri string, doc *docState) error {
	s.mu.Lock()
	text := doc.text
	ver := doc.version
	snap := doc.snap
	s.mu.Unlock()

	result, newSnap, err := s.engine.AnalyzeIncremental(text, snap)
	if err != nil {
		s.log.Error("analysis failed", "uri", uri, "error", err)
		return s.sendPublish(uri, ver, nil)
	}
	s.mu.Lock()
	doc.snap = newSnap
	s.mu.Unlock()

	ix := newLineIndex(text)
	list := make([]lspDiagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		list = append(list, lspDiagnostic{
			Range:    ix.rangeFor(d.Span),
			Severity: lspSeverity(d.Severity),
			Code:     d.Rule,
			Source:   "gantry",
			Message:  d.Message,
		})
	}
	s.log.Debug("published diagnostics", "uri", uri, "count", len(list))
	return s.sendPublish(uri, ver, list)
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error":   rpcError{Code: code, Message: message},
	})
}

func (s *Server) sendPublish(uri string, version int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: list,
		},
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.conn.write(payload)
}
