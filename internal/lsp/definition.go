package lsp

import (
	"encoding/json"

	"ca65ls/internal/workspace"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	result := buildDefinition(ws, params.TextDocument.URI, params.Position)
	return s.sendResponse(msg.ID, result)
}

func buildDefinition(ws *workspace.Workspace, uri string, pos position) []location {
	file, src, ok := wsFile(ws, uri)
	if !ok {
		return nil
	}
	offset := offsetForPositionInFile(src, pos)
	target, ok := ws.DefinitionAt(file, offset)
	if !ok {
		return nil
	}
	span, defFile, ok := ws.EntitySpan(target)
	if !ok {
		return nil
	}
	defSrc := ws.Files.Get(defFile)
	if defSrc == nil {
		return nil
	}
	return []location{{
		URI:   pathToURI(defSrc.Path),
		Range: rangeForSpan(defSrc, span),
	}}
}
