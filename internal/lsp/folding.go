package lsp

import (
	"encoding/json"
	"sort"

	"ca65ls/internal/workspace"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	ranges := buildFoldingRanges(ws, params.TextDocument.URI)
	return s.sendResponse(msg.ID, ranges)
}

func buildFoldingRanges(ws *workspace.Workspace, uri string) []foldingRange {
	file, src, ok := wsFile(ws, uri)
	if !ok {
		return nil
	}
	regions := ws.FoldingRanges(file)
	out := make([]foldingRange, 0, len(regions))
	for _, r := range regions {
		startLine := positionForOffsetInFile(src, r.Start.Start).Line
		endLine := positionForOffsetInFile(src, r.End.Start).Line
		if startLine >= endLine {
			continue
		}
		out = append(out, foldingRange{StartLine: startLine, EndLine: endLine})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine == out[j].StartLine {
			return out[i].EndLine < out[j].EndLine
		}
		return out[i].StartLine < out[j].StartLine
	})
	return out
}
