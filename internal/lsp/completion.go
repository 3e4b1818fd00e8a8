package lsp

import "encoding/json"

const (
	completionKindVariable  = 6
	completionKindFunction  = 3
	completionKindModule    = 9
	completionKindKeyword   = 14
	completionKindFile      = 17
	completionKindReference = 18
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	file, src, ok := wsFile(ws, params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []completionItem{})
	}
	offset := offsetForPositionInFile(src, params.Position)
	candidates := ws.CompletionCandidates(file, offset)

	items := make([]completionItem, 0, len(candidates))
	for _, c := range candidates {
		item := completionItem{
			Label:  c.Name,
			Kind:   completionKindFor(c.Kind),
			Detail: c.Kind,
		}
		for _, e := range c.Edits {
			editSrc := ws.Files.Get(e.File)
			if editSrc == nil {
				continue
			}
			item.AdditionalTextEdits = append(item.AdditionalTextEdits, textEdit{
				Range:   rangeForSpan(editSrc, e.Span),
				NewText: e.NewText,
			})
		}
		items = append(items, item)
	}
	return s.sendResponse(msg.ID, items)
}

func completionKindFor(kind string) int {
	switch kind {
	case "proc", "macro", "define":
		return completionKindFunction
	case "scope", "struct", "union", "enum", "export", "import", "auto-import":
		return completionKindModule
	case "mnemonic", "directive", "pseudo-function", "pseudo-variable":
		return completionKindKeyword
	case "auto-include":
		return completionKindFile
	case "cheap-local":
		return completionKindReference
	default:
		return completionKindVariable
	}
}
