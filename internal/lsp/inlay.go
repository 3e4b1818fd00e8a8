package lsp

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"ca65ls/internal/linelex"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
	"ca65ls/internal/workspace"
)

const inlayHintKindType = 1

func (s *Server) handleInlayHint(msg *rpcMessage) error {
	var params inlayHintParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	ws := s.currentWorkspace()
	hints := buildInlayHints(ws, params.TextDocument.URI, params.Range, s.currentInlayConfig())
	if s.currentTrace() {
		s.logf("inlayHint: uri=%s hints=%d", params.TextDocument.URI, len(hints))
	}
	return s.sendResponse(msg.ID, hints)
}

// buildInlayHints produces the two hint kinds that inlayHintConfig toggles:
// "L<n>" at each anonymous label definition and at each reference recorded
// against it, and " from <path>" at the end of each reference whose resolved
// definition lies in another file. The " from" hint is placed on references,
// not on .import declarations.
func buildInlayHints(ws *workspace.Workspace, uri string, rng lspRange, cfg inlayHintConfig) []inlayHint {
	if !cfg.anonymousLabelIndex && !cfg.importFrom {
		return nil
	}
	file, src, ok := wsFile(ws, uri)
	if !ok {
		return nil
	}
	table, ok := ws.Table(file)
	if !ok {
		return nil
	}
	startOff := offsetForPositionInFile(src, rng.Start)
	endOff := offsetForPositionInFile(src, rng.End)
	if endOff < startOff {
		endOff = startOff
	}

	hints := make([]inlayHint, 0)

	if cfg.anonymousLabelIndex {
		for ordinal, defLine := range table.Anon.DefLine {
			span, ok := lineLabelSpan(src, defLine)
			if !ok || span.Start < startOff || span.Start > endOff {
				continue
			}
			hints = append(hints, anonLabelHint(src, span, ordinal))
		}
		for ordinal, spans := range table.Anon.RefsByOrdinal {
			for _, span := range spans {
				if span.Start < startOff || span.Start > endOff {
					continue
				}
				hints = append(hints, anonLabelHint(src, span, ordinal))
			}
		}
	}

	if cfg.importFrom {
		for i, ref := range table.References.All() {
			if ref.Span.Start < startOff || ref.Span.Start > endOff {
				continue
			}
			refID := symbols.ReferenceID(i + 1) //nolint:gosec // bounded by References arena
			target, ok := ws.Resolver.Resolve(file, ref, refID, ws.Config.ImplicitImports)
			if !ok || target.File == file {
				continue
			}
			label := importFromLabel(ws, target.File)
			if label == "" {
				continue
			}
			hints = append(hints, inlayHint{
				Position:    positionForOffsetInFile(src, ref.Span.End),
				Label:       " from " + label,
				Kind:        inlayHintKindType,
				PaddingLeft: true,
			})
		}
	}

	sort.Slice(hints, func(i, j int) bool {
		if hints[i].Position.Line == hints[j].Position.Line {
			return hints[i].Position.Character < hints[j].Position.Character
		}
		return hints[i].Position.Line < hints[j].Position.Line
	})
	return hints
}

// lineLabelSpan lexes 0-based line line0 of src and returns the span of its
// bare ":" anonymous-label definition token, if the line opens with one.
func lineLabelSpan(src *source.File, line0 uint32) (source.Span, bool) {
	lineSpan := src.LineSpan(line0)
	text := strings.TrimRight(src.GetLine(line0+1), "\r")
	ln := linelex.Lex(src.ID, lineSpan.Start, text)
	if ln.Label == nil || ln.Label.Text != "" {
		return source.Span{}, false
	}
	return ln.Label.Span, true
}

// anonLabelHint renders the 1-based "L<n>" hint for anonymous-label ordinal
// at span's start, per §4.9's inlay-hint rule.
func anonLabelHint(src *source.File, span source.Span, ordinal int) inlayHint {
	return inlayHint{
		Position:     positionForOffsetInFile(src, span.Start),
		Label:        "L" + strconv.Itoa(ordinal+1),
		Kind:         inlayHintKindType,
		PaddingRight: true,
	}
}

func importFromLabel(ws *workspace.Workspace, file source.FileID) string {
	src := ws.Files.Get(file)
	if src == nil {
		return ""
	}
	path := src.Path
	if ws.Root != "" {
		if rel, err := source.RelativePath(path, ws.Root); err == nil && rel != "" {
			return rel
		}
	}
	return path
}
