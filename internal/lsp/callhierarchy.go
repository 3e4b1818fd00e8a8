package lsp

import (
	"encoding/json"

	"ca65ls/internal/symbols"
	"ca65ls/internal/workspace"
)

const symbolKindCallHierarchyFunction = 12

func (s *Server) handlePrepareCallHierarchy(msg *rpcMessage) error {
	var params callHierarchyPrepareParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	file, src, ok := wsFile(ws, params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	offset := offsetForPositionInFile(src, params.Position)
	target, ok := ws.DefinitionAt(file, offset)
	if !ok || !isCallHierarchyTarget(ws, target) {
		return s.sendResponse(msg.ID, nil)
	}
	item, ok := callHierarchyItemFor(ws, target)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, []callHierarchyItem{item})
}

func (s *Server) handleIncomingCalls(msg *rpcMessage) error {
	var params callHierarchyIncomingCallsParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	target, ok := entityFromCallHierarchyItem(ws, params.Item)
	if !ok {
		return s.sendResponse(msg.ID, []callHierarchyIncomingCall{})
	}
	edges := ws.CallersOf(target)
	out := make([]callHierarchyIncomingCall, 0, len(edges))
	for _, edge := range edges {
		if !isCallHierarchyTarget(ws, edge.Caller) {
			continue
		}
		fromItem, ok := callHierarchyItemFor(ws, edge.Caller)
		if !ok {
			continue
		}
		callerSrc := ws.Files.Get(edge.File)
		if callerSrc == nil {
			continue
		}
		out = append(out, callHierarchyIncomingCall{
			From:       fromItem,
			FromRanges: []lspRange{rangeForSpan(callerSrc, edge.Span)},
		})
	}
	return s.sendResponse(msg.ID, out)
}

func (s *Server) handleOutgoingCalls(msg *rpcMessage) error {
	var params callHierarchyOutgoingCallsParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	caller, ok := entityFromCallHierarchyItem(ws, params.Item)
	if !ok {
		return s.sendResponse(msg.ID, []callHierarchyOutgoingCall{})
	}
	edges := ws.CalleesOf(caller)
	out := make([]callHierarchyOutgoingCall, 0, len(edges))
	for _, edge := range edges {
		if !isCallHierarchyTarget(ws, edge.Callee) {
			continue
		}
		toItem, ok := callHierarchyItemFor(ws, edge.Callee)
		if !ok {
			continue
		}
		callSrc := ws.Files.Get(edge.File)
		if callSrc == nil {
			continue
		}
		out = append(out, callHierarchyOutgoingCall{
			To:         toItem,
			FromRanges: []lspRange{rangeForSpan(callSrc, edge.Span)},
		})
	}
	return s.sendResponse(msg.ID, out)
}

// isCallHierarchyTarget reports whether ref is a symbol or a proc-kind scope,
// the two entity shapes the jsr/jmp tagging rule ever marks as a caller.
func isCallHierarchyTarget(ws *workspace.Workspace, ref symbols.EntityRef) bool {
	switch ref.Kind {
	case symbols.EntitySymbol:
		return true
	case symbols.EntityScope:
		table, ok := ws.Table(ref.File)
		if !ok {
			return false
		}
		scope := table.Scopes.Get(ref.Scope)
		return scope != nil && scope.Kind == symbols.ScopeProc
	default:
		return false
	}
}

func callHierarchyItemFor(ws *workspace.Workspace, ref symbols.EntityRef) (callHierarchyItem, bool) {
	span, file, ok := ws.EntitySpan(ref)
	if !ok {
		return callHierarchyItem{}, false
	}
	src := ws.Files.Get(file)
	if src == nil {
		return callHierarchyItem{}, false
	}
	name := ws.EntityName(ref)
	if name == "" {
		return callHierarchyItem{}, false
	}
	rng := rangeForSpan(src, span)
	return callHierarchyItem{
		Name:           name,
		Kind:           symbolKindCallHierarchyFunction,
		URI:            pathToURI(src.Path),
		Range:          rng,
		SelectionRange: rng,
	}, true
}

// entityFromCallHierarchyItem re-resolves a call hierarchy item back to the
// symbol or proc scope it names, by looking up its declaration offset in its
// file: a label symbol takes priority, since a label's own span sits inside
// whatever scope encloses it.
func entityFromCallHierarchyItem(ws *workspace.Workspace, item callHierarchyItem) (symbols.EntityRef, bool) {
	file, ok := ws.File(uriToPath(item.URI))
	if !ok {
		return symbols.EntityRef{}, false
	}
	src := ws.Files.Get(file)
	if src == nil {
		return symbols.EntityRef{}, false
	}
	offset := offsetForPositionInFile(src, item.SelectionRange.Start)
	if symID, _, ok := ws.SymbolAt(file, offset); ok {
		return symbols.SymbolRef(file, symID), true
	}
	table, ok := ws.Table(file)
	if !ok {
		return symbols.EntityRef{}, false
	}
	scope := table.ScopeAt(offset)
	if s := table.Scopes.Get(scope); s != nil && s.Kind == symbols.ScopeProc {
		return symbols.ScopeRef(file, scope), true
	}
	return symbols.EntityRef{}, false
}
