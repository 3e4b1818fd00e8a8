package lsp

import (
	"ca65ls/internal/source"
	"ca65ls/internal/workspace"
)

// wsFile resolves uri to its current FileID and *source.File, both zero if
// the document has never been scanned into ws.
func wsFile(ws *workspace.Workspace, uri string) (source.FileID, *source.File, bool) {
	path := uriToPath(uri)
	if path == "" {
		return 0, nil, false
	}
	file, ok := ws.File(path)
	if !ok {
		return 0, nil, false
	}
	src := ws.Files.Get(file)
	if src == nil {
		return 0, nil, false
	}
	return file, src, true
}
