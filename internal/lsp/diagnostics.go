package lsp

import (
	"sync/atomic"
	"time"

	"ca65ls/internal/source"
	"ca65ls/internal/workspace"
)

const diagnosticSeverityWarning = 2

// scheduleDiagnostics debounces a rescan-triggered diagnostics pass: rapid
// keystrokes collapse into a single pass fired debounce after the last one.
func (s *Server) scheduleDiagnostics() {
	seq := atomic.AddUint64(&s.latestSeq, 1)
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

// runDiagnostics recomputes unused-symbol diagnostics for every open
// document and publishes them, unless a newer edit has superseded seq.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	ws := s.currentWorkspace()
	unused := ws.UnusedSymbols()
	if !s.isLatestSeq(seq) {
		return
	}

	byFile := make(map[source.FileID][]workspace.UnusedSymbol)
	for _, u := range unused {
		byFile[u.File] = append(byFile[u.File], u)
	}

	s.mu.Lock()
	atomic.StoreUint64(&s.appliedSeq, seq)
	uris := make([]string, 0, len(s.openDocs))
	for uri := range s.openDocs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()

	for _, uri := range uris {
		path := uriToPath(uri)
		file, ok := ws.File(path)
		if !ok {
			s.publishDiagnostics(uri, nil)
			continue
		}
		src := ws.Files.Get(file)
		diags := make([]lspDiagnostic, 0, len(byFile[file]))
		for _, u := range byFile[file] {
			diags = append(diags, lspDiagnostic{
				Range:    rangeForSpan(src, u.Span),
				Severity: diagnosticSeverityWarning,
				Code:     "unused-symbol",
				Source:   "ca65ls",
				Message:  "\"" + u.Name + "\" is never referenced",
			})
		}
		s.publishDiagnostics(uri, diags)
	}
}

func (s *Server) publishDiagnostics(uri string, diags []lspDiagnostic) {
	s.mu.Lock()
	if len(diags) == 0 {
		delete(s.published, uri)
	} else {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()
	if err := s.sendPublish(uri, diags); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

// clearPublishedDiagnostics clears every diagnostic this server has sent,
// called on shutdown so the client doesn't keep stale squiggles around.
func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
