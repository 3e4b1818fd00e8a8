package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
	"ca65ls/internal/workspace"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	result := buildHover(ws, params.TextDocument.URI, params.Position)
	return s.sendResponse(msg.ID, result)
}

func buildHover(ws *workspace.Workspace, uri string, pos position) *hover {
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

	lines := make([]string, 0, 2)
	if signature := formatEntitySignature(ws, target); signature != "" {
		lines = append(lines, "```ca65\n"+signature+"\n```")
	}
	if loc := entityLocation(ws, target, defFile, span); loc != "" {
		lines = append(lines, loc)
	}
	if len(lines) == 0 {
		return nil
	}

	refSpan := span
	if refID, ref, ok := ws.ReferenceAt(file, offset); ok {
		_ = refID
		refSpan = ref.Span
	}
	hoverRange := rangeForSpan(src, refSpan)
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: strings.Join(lines, "\n")},
		Range:    &hoverRange,
	}
}

func formatEntitySignature(ws *workspace.Workspace, ref symbols.EntityRef) string {
	name := ws.EntityName(ref)
	if name == "" {
		return ""
	}
	table, ok := ws.Table(ref.File)
	if !ok {
		return name
	}
	switch ref.Kind {
	case symbols.EntitySymbol:
		if sym := table.Symbols.Get(ref.Symbol); sym != nil {
			return sym.Kind.String() + " " + name
		}
	case symbols.EntityScope:
		if scope := table.Scopes.Get(ref.Scope); scope != nil {
			return scope.Kind.String() + " " + name
		}
	case symbols.EntityMacro:
		if m := table.Macros.Get(ref.Macro); m != nil {
			return m.Kind.String() + " " + name
		}
	case symbols.EntityImport:
		return "import " + name
	}
	return name
}

func entityLocation(ws *workspace.Workspace, ref symbols.EntityRef, file source.FileID, span source.Span) string {
	src := ws.Files.Get(file)
	if src == nil {
		return ""
	}
	pos := positionForOffsetInFile(src, span.Start)
	path := src.Path
	if ws.Root != "" {
		if rel, err := source.RelativePath(path, ws.Root); err == nil && rel != "" {
			path = rel
		}
	}
	if ref.Kind == symbols.EntityImport {
		return fmt.Sprintf("Declared in %s:%d (unresolved import)", path, pos.Line+1)
	}
	return fmt.Sprintf("Defined in %s:%d", path, pos.Line+1)
}
