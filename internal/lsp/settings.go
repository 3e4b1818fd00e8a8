package lsp

import "encoding/json"

// inlayHintConfig controls which inlay hints buildInlayHints emits; it
// mirrors ca65.toml's anonymous-label-index-hints/import-from-hints
// toggles so a client override behaves the same as editing the manifest.
type inlayHintConfig struct {
	anonymousLabelIndex bool
	importFrom          bool
}

func defaultInlayHintConfig() inlayHintConfig {
	return inlayHintConfig{
		anonymousLabelIndex: true,
		importFrom:          true,
	}
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	s.clearDocumentOverrides()
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.Ca65.InlayHints.AnonymousLabelIndex != nil {
		s.inlayHints.anonymousLabelIndex = *settings.Ca65.InlayHints.AnonymousLabelIndex
	}
	if settings.Ca65.InlayHints.ImportFrom != nil {
		s.inlayHints.importFrom = *settings.Ca65.InlayHints.ImportFrom
	}
	if settings.Ca65.LSP.Trace != nil {
		s.traceLSP = *settings.Ca65.LSP.Trace
	}
}

// clearDocumentOverrides drops every per-document configuration override
// cached from a prior didOpen, per the §4.13 policy that a workspace-level
// config change invalidates document-level overrides until they are
// re-sent.
func (s *Server) clearDocumentOverrides() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docOverrides = make(map[string]json.RawMessage)
}
