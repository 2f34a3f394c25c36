// Package lsp implements the sqleibniz language server: hover, full-document
// text synchronisation, and diagnostic publication over stdio JSON-RPC.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/lexer"
	"github.com/xqlint/sqleibniz/pkg/parser"
	"github.com/xqlint/sqleibniz/pkg/token"
)

// document is the analyzed state kept for one open text document.
type document struct {
	text   []byte
	tokens []token.Token
	diags  []diagnostic.Diagnostic
	nodes  []ast.Node
}

// Server holds the per-connection document table. Two concurrent
// invocations on different files must not share mutable state beyond this
// table, which is guarded by mu since didChange notifications and
// hover/diagnostic requests arrive on the same dispatch goroutine but must
// remain safe if the transport ever becomes concurrent.
type Server struct {
	log  *zap.Logger
	mu   sync.Mutex
	docs map[protocol.DocumentURI]*document

	conn jsonrpc2.Conn
}

// New constructs a Server. log may be nil, in which case a no-op logger is
// used.
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, docs: map[protocol.DocumentURI]*document{}}
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// Run starts the server on stdin/stdout and blocks until the connection
// closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	stream := jsonrpc2.NewStream(stdio{os.Stdin, os.Stdout})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handle)

	select {
	case <-conn.Done():
		return conn.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.log.Debug("received request", zap.String("method", req.Method()))

	switch req.Method() {
	case "initialize":
		return reply(ctx, s.initializeResult(), nil)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		os.Exit(0)
		return nil
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		s.analyze(params.TextDocument.URI, []byte(params.TextDocument.Text))
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return reply(ctx, nil, nil)
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		if len(params.ContentChanges) == 0 {
			return reply(ctx, nil, nil)
		}
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.analyze(params.TextDocument.URI, []byte(text))
		s.publishDiagnostics(ctx, params.TextDocument.URI)
		return reply(ctx, nil, nil)
	case "textDocument/hover":
		var params protocol.HoverParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, s.hover(params), nil)
	case "textDocument/diagnostic":
		var params struct {
			TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
		}
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, s.diagnosticReport(params.TextDocument.URI), nil)
	default:
		s.log.Debug("unsupported method", zap.String("method", req.Method()))
		return reply(ctx, nil, fmt.Errorf("method not found: %s", req.Method()))
	}
}

func (s *Server) initializeResult() protocol.InitializeResult {
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			HoverProvider: true,
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
		},
	}
}

func (s *Server) analyze(docURI protocol.DocumentURI, text []byte) {
	name := uri.URI(docURI).Filename()

	l := lexer.New(text, name)
	tokens := l.Run()
	diags := append([]diagnostic.Diagnostic{}, l.Diagnostics...)

	nodes, parseDiags := parser.ParseAll(tokens, name)
	diags = append(diags, parseDiags...)

	s.mu.Lock()
	s.docs[docURI] = &document{text: text, tokens: tokens, diags: diags, nodes: nodes}
	s.mu.Unlock()
}

func (s *Server) publishDiagnostics(ctx context.Context, docURI protocol.DocumentURI) {
	s.mu.Lock()
	doc := s.docs[docURI]
	s.mu.Unlock()
	if doc == nil {
		return
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diagnostic.ToLSPAll(doc.diags),
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.log.Error("failed to publish diagnostics", zap.Error(err))
	}
}

// diagnosticReport answers a pull-style textDocument/diagnostic request
// with the currently cached analysis, in the "full" report shape.
func (s *Server) diagnosticReport(docURI protocol.DocumentURI) map[string]any {
	s.mu.Lock()
	doc := s.docs[docURI]
	s.mu.Unlock()
	if doc == nil {
		return map[string]any{"kind": "full", "items": []protocol.Diagnostic{}}
	}
	return map[string]any{"kind": "full", "items": diagnostic.ToLSPAll(doc.diags)}
}

// hover returns the name and doc of the first top-level statement whose
// primary token span contains the cursor, falling back to the raw token
// kind when no statement matches. Nested nodes (an Explain child, an
// Alter's column definition, an expression) are not searched.
func (s *Server) hover(params protocol.HoverParams) *protocol.Hover {
	docURI := params.TextDocument.URI
	line := int(params.Position.Line)
	col := int(params.Position.Character)

	s.mu.Lock()
	doc := s.docs[docURI]
	s.mu.Unlock()
	if doc == nil {
		return nil
	}

	text := "sqleibniz: unknown"
	for _, n := range doc.nodes {
		span := n.Span()
		if span.Line == line && span.Start <= col && col <= span.End {
			text = fmt.Sprintf("**%s**\n\n%s", n.Name(), n.Doc())
			break
		}
	}
	if text == "sqleibniz: unknown" {
		for _, tok := range doc.tokens {
			if tok.Span.Line == line && tok.Span.Start <= col && col <= tok.Span.End {
				text = fmt.Sprintf("sqleibniz: `%s`", tok.Kind)
				break
			}
		}
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: text},
	}
}
