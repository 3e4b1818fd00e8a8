package lsp

import (
	"encoding/json"

	"ca65ls/internal/workspace"
)

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	result := buildReferences(ws, params.TextDocument.URI, params.Position, params.Context.IncludeDeclaration)
	return s.sendResponse(msg.ID, result)
}

func buildReferences(ws *workspace.Workspace, uri string, pos position, includeDeclaration bool) []location {
	file, src, ok := wsFile(ws, uri)
	if !ok {
		return nil
	}
	offset := offsetForPositionInFile(src, pos)
	target, ok := ws.DefinitionAt(file, offset)
	if !ok {
		return nil
	}
	locs := ws.ReferencesTo(target, includeDeclaration)
	out := make([]location, 0, len(locs))
	for _, l := range locs {
		locSrc := ws.Files.Get(l.File)
		if locSrc == nil {
			continue
		}
		out = append(out, location{URI: pathToURI(locSrc.Path), Range: rangeForSpan(locSrc, l.Span)})
	}
	return out
}
