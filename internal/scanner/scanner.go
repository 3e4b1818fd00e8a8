// Package scanner performs the single forward pass over a ca65 source
// file's lines that builds its symbols.Table: opening and closing scopes,
// declaring symbols, imports and exports, and recording every reference.
package scanner

import (
	"strings"

	"fortio.org/safecast"

	"ca65ls/internal/anonlabel"
	"ca65ls/internal/argparse"
	"ca65ls/internal/linelex"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// postIncludeSegment is the synthetic, opaque segment name the current
// segment is set to once an .include or .incbin directive has been seen,
// per the segment-after-include decision in SPEC_FULL.md. Consumers must never parse
// its form, only compare it.
const postIncludeSegment = "<post-include>"

func toU32(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		return 0
	}
	return v
}

// Include is a path named by a .include or .incbin directive, with the
// literal text span for diagnostics and Binary set for .incbin.
type Include struct {
	Path   string
	Span   source.Span
	Binary bool
}

// Result is everything a scan produces for one file.
type Result struct {
	Table    *symbols.Table
	Includes []Include
}

// state carries the scanner's running state across lines.
type state struct {
	table    *symbols.Table
	file     source.FileID
	interner *source.Interner

	scopeStack []symbols.ScopeID
	segment    string

	inMacro bool

	structKind symbols.ScopeKind // nonzero while inside a .struct/.union/.enum body

	pendingLabel symbols.SymbolID
	// callers mirrors scopeStack: callers[i] is the calling entity active
	// while scopeStack[i] is on top, per the jsr/jmp tagging rule (the
	// currently active label if any, else the enclosing scope if it is a
	// proc). Pushing a scope inherits the caller active just before it
	// opened; popping it restores that caller, so a scope's own label or
	// .proc identity never leaks past its .end directive.
	callers []callerState

	result Result
}

type callerState struct {
	ref symbols.EntityRef
	has bool
}

// Scan runs the forward pass over text (the full file content, "\n"
// delimited) and returns the populated table and every include directive seen.
func Scan(file source.FileID, interner *source.Interner, text string) Result {
	st := &state{
		table:    symbols.NewTable(file, interner),
		file:     file,
		interner: interner,
		segment:  "CODE",
	}
	st.result.Table = st.table
	st.scopeStack = []symbols.ScopeID{st.table.Root}
	st.callers = []callerState{{}}

	lines := strings.Split(text, "\n")
	var offset uint32
	for lineNo, raw := range lines {
		text := strings.TrimRight(raw, "\r")
		ln := linelex.Lex(file, offset, text)
		st.dispatch(toU32(lineNo), ln)
		offset += toU32(len(raw)) + 1
	}

	endSpan := source.Span{File: file, Start: offset, End: offset}
	for _, id := range st.scopeStack {
		st.table.CloseScope(id, endSpan)
	}
	return st.result
}

func (st *state) top() symbols.ScopeID { return st.scopeStack[len(st.scopeStack)-1] }

func (st *state) push(id symbols.ScopeID) {
	st.scopeStack = append(st.scopeStack, id)
	st.callers = append(st.callers, st.callers[len(st.callers)-1])
}

func (st *state) pop(end source.Span) {
	if len(st.scopeStack) <= 1 {
		return
	}
	st.table.CloseScope(st.top(), end)
	st.scopeStack = st.scopeStack[:len(st.scopeStack)-1]
	st.callers = st.callers[:len(st.callers)-1]
}

// currentCaller returns the calling entity active at the top of the scope
// stack, if any.
func (st *state) currentCaller() (symbols.EntityRef, bool) {
	top := st.callers[len(st.callers)-1]
	return top.ref, top.has
}

// setCaller installs ref as the calling entity for the scope currently on
// top of the stack, without pushing a new frame.
func (st *state) setCaller(ref symbols.EntityRef) {
	st.callers[len(st.callers)-1] = callerState{ref: ref, has: true}
}

func (st *state) dispatch(lineNo uint32, ln linelex.Line) {
	if st.inMacro {
		if ln.Command != nil && isMacroEnd(ln.Command.Text) {
			st.inMacro = false
			if ids := st.table.Macros.All(); len(ids) > 0 {
				if m := st.table.Macros.Get(ids[len(ids)-1]); m != nil && m.Kind == symbols.MacroTemplate && m.End == m.Span {
					m.End = ln.Command.Span
				}
			}
		}
		return
	}
	if st.structKind != symbols.ScopeInvalid {
		if st.handleStructBody(lineNo, ln) {
			return
		}
	}

	if ln.Label != nil {
		st.handleLabel(lineNo, ln.Label)
	}
	if ln.Command != nil {
		st.handleCommand(lineNo, ln)
	}
	if ln.Args != nil {
		st.scanReferences(lineNo, ln.Args, ln.Command)
	}
}

func isMacroEnd(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ".endmacro", ".endmac":
		return true
	default:
		return false
	}
}

// handleStructBody dispatches a line inside a .struct/.union/.enum body;
// returns true if the line was fully handled there.
func (st *state) handleStructBody(lineNo uint32, ln linelex.Line) bool {
	cmd := ""
	if ln.Command != nil {
		cmd = strings.ToLower(ln.Command.Text)
	}
	switch cmd {
	case ".endstruct", ".endunion", ".endenum":
		want := map[string]symbols.ScopeKind{".endstruct": symbols.ScopeStruct, ".endunion": symbols.ScopeUnion, ".endenum": symbols.ScopeEnum}[cmd]
		if top := st.table.Scopes.Get(st.top()); top == nil || top.Kind != want {
			return true // mismatched end directive: ignored
		}
		st.pop(cmdSpan(ln))
		st.structKind = symbols.ScopeInvalid
		return true
	}
	if ln.Label != nil && ln.Label.Text != "" {
		kind := symbols.SymbolStructMember
		if st.structKind == symbols.ScopeEnum {
			kind = symbols.SymbolEnumMember
		}
		name := st.interner.Intern(ln.Label.Text)
		st.table.AddSymbol(st.top(), symbols.Symbol{Name: name, Kind: kind, Span: ln.Label.Span, Segment: st.segment})
		return true
	}
	return false
}

func cmdSpan(ln linelex.Line) source.Span {
	if ln.Command != nil {
		return ln.Command.Span
	}
	if ln.Args != nil {
		return ln.Args.Span
	}
	return source.Span{}
}

// handleLabel processes a line's label item: a real name, a cheap-local
// ("@name") label, or an empty ":" anonymous-label definition.
func (st *state) handleLabel(lineNo uint32, label *linelex.Item) {
	switch {
	case label.Text == "":
		st.table.Anon.Define(lineNo)
	case strings.HasPrefix(label.Text, "@"):
		// Cheap locals never enter the symbol table; anonlabel resolves
		// them on demand from raw source text.
	default:
		name := st.interner.Intern(label.Text)
		id := st.table.AddSymbol(st.top(), symbols.Symbol{
			Name: name, Kind: symbols.SymbolLabel, Span: label.Span, Segment: st.segment,
		})
		st.pendingLabel = id
		st.setCaller(symbols.SymbolRef(st.file, id))
	}
}

func (st *state) handleCommand(lineNo uint32, ln linelex.Line) {
	cmd := strings.ToLower(ln.Command.Text)
	switch cmd {
	case ".proc":
		st.openNamedScope(symbols.ScopeProc, ln)
		if name := firstArgName(ln.Args); name != "" {
			st.setCaller(symbols.ScopeRef(st.file, st.top()))
		}
	case ".scope":
		st.openNamedScope(symbols.ScopeGeneric, ln)
	case ".struct":
		st.openBodyScope(symbols.ScopeStruct, ln)
	case ".union":
		st.openBodyScope(symbols.ScopeUnion, ln)
	case ".enum":
		st.openBodyScope(symbols.ScopeEnum, ln)
	case ".endproc", ".endscope":
		want := symbols.ScopeProc
		if cmd == ".endscope" {
			want = symbols.ScopeGeneric
		}
		if top := st.table.Scopes.Get(st.top()); top != nil && top.Kind == want {
			st.pop(cmdSpan(ln))
		}
	case ".macro", ".mac":
		st.inMacro = true
		name := firstArgName(ln.Args)
		if name != "" {
			st.table.Macros.Declare(st.interner.Intern(name), symbols.MacroTemplate, ln.Command.Span)
		}
	case ".define":
		name := firstArgName(ln.Args)
		if name != "" {
			st.table.Macros.Declare(st.interner.Intern(name), symbols.MacroDefine, ln.Command.Span)
		}
	case ".res", ".tag":
		st.refinePending(symbols.SymbolResLabel)
	case ".byte", ".word", ".dword", ".addr", ".dbyt", ".align", ".bankbytes", ".byt", ".faraddr":
		st.refinePending(symbols.SymbolDataLabel)
	case ".asciiz", ".ascii", ".literal":
		st.refinePending(symbols.SymbolStringLabel)
	case ".segment":
		if name := firstArgName(ln.Args); name != "" {
			st.segment = strings.Trim(name, `"`)
		}
	case ".code", ".data", ".rodata", ".bss", ".zeropage":
		st.segment = strings.ToUpper(strings.TrimPrefix(cmd, "."))
	case ".import", ".importzp":
		st.handleImport(ln, symbols.ImportPlain, cmd == ".importzp")
	case ".global", ".globalzp":
		st.handleGlobal(ln, cmd == ".globalzp")
	case ".export", ".exportzp":
		st.handleExport(ln, cmd == ".exportzp")
	case ".include":
		if path := firstArgName(ln.Args); path != "" {
			st.result.Includes = append(st.result.Includes, Include{Path: path, Span: ln.Args.Span})
		}
		st.segment = postIncludeSegment
	case ".incbin":
		if path := firstArgName(ln.Args); path != "" {
			st.result.Includes = append(st.result.Includes, Include{Path: path, Span: ln.Args.Span, Binary: true})
		}
		st.segment = postIncludeSegment
	}
}

func (st *state) refinePending(kind symbols.SymbolKind) {
	if sym := st.table.Symbols.Get(st.pendingLabel); sym != nil {
		sym.RefineKind(kind)
	}
}

func (st *state) openNamedScope(kind symbols.ScopeKind, ln linelex.Line) {
	name := source.NoStringID
	if label := ln.Label; label != nil && label.Text != "" {
		name = st.interner.Intern(label.Text)
	} else if n := firstArgName(ln.Args); n != "" {
		name = st.interner.Intern(n)
	}
	id := st.table.OpenScope(kind, st.top(), name, cmdSpan(ln), st.segment)
	st.push(id)
}

func (st *state) openBodyScope(kind symbols.ScopeKind, ln linelex.Line) {
	var name source.StringID = source.NoStringID
	if label := ln.Label; label != nil && label.Text != "" {
		name = st.interner.Intern(label.Text)
	} else if n := firstArgName(ln.Args); n != "" {
		name = st.interner.Intern(n)
	}
	id := st.table.OpenScope(kind, st.top(), name, cmdSpan(ln), st.segment)
	st.push(id)
	st.structKind = kind
}

func (st *state) handleImport(ln linelex.Line, kind symbols.ImportKind, zp bool) {
	for _, name := range splitArgNames(ln.Args) {
		st.table.AddImport(st.top(), symbols.Import{
			Name: st.interner.Intern(name), Kind: kind, Span: ln.Args.Span, ZeroPage: zp,
		})
	}
}

func (st *state) handleGlobal(ln linelex.Line, zp bool) {
	for _, name := range splitArgNames(ln.Args) {
		id := st.interner.Intern(name)
		st.table.AddImport(st.top(), symbols.Import{Name: id, Kind: symbols.ImportGlobal, Span: ln.Args.Span, ZeroPage: zp})
		st.table.AddExport(symbols.Export{Name: id, Kind: symbols.ExportGlobal, Scope: st.top(), Span: ln.Args.Span, ZeroPage: zp})
	}
}

func (st *state) handleExport(ln linelex.Line, zp bool) {
	for _, item := range splitExportItems(ln.Args) {
		id := st.interner.Intern(item.name)
		exp := symbols.Export{Name: id, Kind: symbols.ExportPlain, Scope: st.top(), Span: ln.Args.Span, ZeroPage: zp}
		if item.hasValue {
			exp.HasValue = true
			exp.ValueSpan = item.valueSpan
			st.table.AddSymbol(st.top(), symbols.Symbol{Name: id, Kind: symbols.SymbolConstant, Span: item.valueSpan, Segment: st.segment})
		}
		st.table.AddExport(exp)
	}
}

// scanReferences records every ":"-style anonymous-label use on the line
// against the anonymous-label table, then runs the argument parser over
// args and records every qualified-name group as a reference.
func (st *state) scanReferences(lineNo uint32, args *linelex.Item, cmd *linelex.Item) {
	for _, anonRef := range anonlabel.FindReferences(args) {
		if ordinal, ok := anonlabel.Resolve(st.table.Anon, lineNo, anonRef.Offset); ok {
			st.table.Anon.RecordReference(ordinal, anonRef.Span)
		}
	}

	caller, hasCaller := st.currentCaller()
	for _, g := range argparse.Parse(args) {
		chain := symbols.QualifierChain{Absolute: g.Absolute}
		for _, tok := range g.Tokens {
			chain.Parts = append(chain.Parts, st.interner.Intern(tok.Text))
		}
		ctx := symbols.RefSymbol
		if g.Context == "sizeof" {
			ctx = symbols.RefSizeof
		}
		last := g.Tokens[len(g.Tokens)-1]
		ref := symbols.Reference{Qualifier: chain, Context: ctx, Span: last.Span, Scope: st.top()}
		if cmd != nil && isCallCommand(cmd.Text) && hasCaller {
			ref.HasCaller = true
			ref.Caller = caller
		}
		st.table.AddReference(ref)
	}
}

func isCallCommand(cmd string) bool {
	switch strings.ToLower(cmd) {
	case "jsr", "jmp":
		return true
	default:
		return false
	}
}

// firstArgName returns the first identifier-like token of args, trimming
// quotes for string-literal operands like .include/.segment arguments.
func firstArgName(args *linelex.Item) string {
	if args == nil {
		return ""
	}
	text := strings.TrimSpace(args.Text)
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') {
		if end := strings.IndexByte(text[1:], text[0]); end >= 0 {
			return text[1 : end+1]
		}
	}
	end := 0
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	if end == 0 {
		return ""
	}
	return text[:end]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// splitArgNames splits a comma-separated .import/.global argument list into
// bare names, ignoring any ":addrspace" suffix.
func splitArgNames(args *linelex.Item) []string {
	if args == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(args.Text, ",") {
		part = strings.TrimSpace(part)
		if i := strings.IndexByte(part, ':'); i >= 0 {
			part = part[:i]
		}
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

type exportItem struct {
	name      string
	hasValue  bool
	valueSpan source.Span
}

// splitExportItems splits a .export/.exportzp argument list, recognizing
// each item's optional ":addrspec" and "=value"/":=value" suffix.
func splitExportItems(args *linelex.Item) []exportItem {
	if args == nil {
		return nil
	}
	var out []exportItem
	offset := args.Span.Start
	for _, part := range strings.Split(args.Text, ",") {
		start := offset
		offset += toU32(len(part)) + 1
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		item := exportItem{}
		if eq := strings.IndexAny(trimmed, "="); eq >= 0 {
			name := trimmed[:eq]
			name = strings.TrimSuffix(strings.TrimSpace(name), ":")
			if c := strings.IndexByte(name, ':'); c >= 0 {
				name = name[:c]
			}
			item.name = strings.TrimSpace(name)
			item.hasValue = true
			valStart := start + toU32(strings.Index(part, "=")+1)
			item.valueSpan = source.Span{File: args.Span.File, Start: valStart, End: start + toU32(len(part))}
		} else {
			name := trimmed
			if c := strings.IndexByte(name, ':'); c >= 0 {
				name = name[:c]
			}
			item.name = strings.TrimSpace(name)
		}
		if item.name != "" {
			out = append(out, item)
		}
	}
	return out
}
