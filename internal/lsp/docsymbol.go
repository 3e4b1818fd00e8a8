package lsp

import (
	"encoding/json"

	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
	"ca65ls/internal/workspace"
)

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	file, src, ok := wsFile(ws, params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	entries := ws.Outline(file)
	return s.sendResponse(msg.ID, buildDocumentSymbols(src, entries))
}

func buildDocumentSymbols(src *source.File, entries []workspace.OutlineEntry) []documentSymbol {
	out := make([]documentSymbol, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		rng := rangeForSpan(src, e.Span)
		out = append(out, documentSymbol{
			Name:           e.Name,
			Kind:           documentSymbolKind(e),
			Range:          rng,
			SelectionRange: rng,
			Children:       buildDocumentSymbols(src, e.Children),
		})
	}
	return out
}

func documentSymbolKind(e workspace.OutlineEntry) int {
	if e.IsScope {
		switch e.ScopeKind {
		case symbols.ScopeProc:
			return symbolKindFunction
		case symbols.ScopeStruct, symbols.ScopeUnion, symbols.ScopeEnum:
			return symbolKindClass
		default:
			return symbolKindNamespace
		}
	}
	switch e.SymbolKind {
	case symbols.SymbolConstant:
		return symbolKindConstant
	case symbols.SymbolStructMember, symbols.SymbolEnumMember:
		return symbolKindEnumMember
	case symbols.SymbolResLabel, symbols.SymbolDataLabel, symbols.SymbolStringLabel, symbols.SymbolLabel:
		return symbolKindFunction
	default:
		return symbolKindVariable
	}
}
