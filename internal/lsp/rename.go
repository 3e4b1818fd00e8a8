package lsp

import (
	"encoding/json"

	"ca65ls/internal/workspace"
)

func (s *Server) handleRename(msg *rpcMessage) error {
	var params renameParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	result := buildRename(ws, params.TextDocument.URI, params.Position, params.NewName)
	if result == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, result)
}

// buildRename renames every use site of the entity under the cursor,
// including its own declaration; it never touches an unresolved import
// placeholder's name, since that name is defined in a file outside the
// workspace's knowledge.
func buildRename(ws *workspace.Workspace, uri string, pos position, newName string) *workspaceEdit {
	if newName == "" {
		return nil
	}
	file, src, ok := wsFile(ws, uri)
	if !ok {
		return nil
	}
	offset := offsetForPositionInFile(src, pos)
	target, ok := ws.DefinitionAt(file, offset)
	if !ok {
		return nil
	}
	locs := ws.ReferencesTo(target, true)
	if len(locs) == 0 {
		return nil
	}
	changes := make(map[string][]textEdit)
	for _, l := range locs {
		locSrc := ws.Files.Get(l.File)
		if locSrc == nil {
			continue
		}
		uri := pathToURI(locSrc.Path)
		changes[uri] = append(changes[uri], textEdit{
			Range:   rangeForSpan(locSrc, l.Span),
			NewText: newName,
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &workspaceEdit{Changes: changes}
}
