package workspace

import (
	"sort"
	"strings"

	"ca65ls/internal/anonlabel"
	"ca65ls/internal/argparse"
	"ca65ls/internal/linelex"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// Location pairs a file with a span inside it.
type Location struct {
	File source.FileID
	Span source.Span
}

// SymbolAt returns the symbol whose own declaration span contains offset.
func (w *Workspace) SymbolAt(file source.FileID, offset uint32) (symbols.SymbolID, *symbols.Symbol, bool) {
	table, ok := w.Table(file)
	if !ok {
		return symbols.NoSymbolID, nil, false
	}
	for i := 1; i <= table.Symbols.Len(); i++ {
		id := symbols.SymbolID(i) //nolint:gosec // bounded by Symbols.Len
		sym := table.Symbols.Get(id)
		if sym != nil && sym.Span.Start <= offset && offset < sym.Span.End {
			return id, sym, true
		}
	}
	return symbols.NoSymbolID, nil, false
}

// ReferenceAt returns the reference whose span contains offset, plus the
// ReferenceID the resolver's cache keys on.
func (w *Workspace) ReferenceAt(file source.FileID, offset uint32) (symbols.ReferenceID, *symbols.Reference, bool) {
	table, ok := w.Table(file)
	if !ok {
		return symbols.NoReferenceID, nil, false
	}
	ref, ok := table.ReferenceAt(offset)
	if !ok {
		return symbols.NoReferenceID, nil, false
	}
	for i, r := range table.References.All() {
		if r == ref {
			return symbols.ReferenceID(i + 1), ref, true //nolint:gosec // bounded by References arena
		}
	}
	return symbols.NoReferenceID, nil, false
}

// DefinitionAt answers "go to definition" for offset in file: a use site
// resolves through the resolver; sitting on a declaration resolves to
// itself, which lets hover reuse this for either case. Neither the scoped
// resolver nor SymbolAt know about ":"-style anonymous labels or "@"
// cheap-locals, so a miss there falls back to the textual resolution rules
// in internal/anonlabel.
func (w *Workspace) DefinitionAt(file source.FileID, offset uint32) (symbols.EntityRef, bool) {
	if refID, ref, ok := w.ReferenceAt(file, offset); ok {
		if got, ok := w.Resolver.Resolve(file, ref, refID, w.Config.ImplicitImports); ok {
			return got, true
		}
	}
	if symID, _, ok := w.SymbolAt(file, offset); ok {
		return symbols.SymbolRef(file, symID), true
	}
	if line0, ok := w.lineAt(file, offset); ok {
		if target, ok := w.anonymousLabelAt(file, line0, offset); ok {
			return target, true
		}
		if target, ok := w.cheapLocalAt(file, line0, offset); ok {
			return target, true
		}
	}
	return symbols.EntityRef{}, false
}

// lineAt returns the 0-based source line offset falls on.
func (w *Workspace) lineAt(file source.FileID, offset uint32) (uint32, bool) {
	if w.Files.Get(file) == nil {
		return 0, false
	}
	start, _ := w.Files.Resolve(source.Span{File: file, Start: offset, End: offset})
	if start.Line == 0 {
		return 0, false
	}
	return start.Line - 1, true
}

// lexLine lexes file's 0-based line line0 at its true byte offset, so the
// returned items carry spans comparable against offset.
func (w *Workspace) lexLine(file source.FileID, line0 uint32) (linelex.Line, bool) {
	src := w.Files.Get(file)
	if src == nil {
		return linelex.Line{}, false
	}
	lineSpan := src.LineSpan(line0)
	text := strings.TrimRight(src.GetLine(line0+1), "\r")
	return linelex.Lex(file, lineSpan.Start, text), true
}

// anonymousLabelAt resolves a ":"-style anonymous-label definition or
// reference at offset on line0 to the line its ordinal is defined on.
func (w *Workspace) anonymousLabelAt(file source.FileID, line0, offset uint32) (symbols.EntityRef, bool) {
	table, ok := w.Table(file)
	if !ok {
		return symbols.EntityRef{}, false
	}
	ln, ok := w.lexLine(file, line0)
	if !ok {
		return symbols.EntityRef{}, false
	}
	if ln.Label != nil && ln.Label.Text == "" && ln.Label.Span.Start <= offset && offset < ln.Label.Span.End {
		return symbols.LineRef(file, line0), true
	}
	for _, ref := range anonlabel.FindReferences(ln.Args) {
		if ref.Span.Start > offset || offset >= ref.Span.End {
			continue
		}
		ordinal, ok := anonlabel.Resolve(table.Anon, line0, ref.Offset)
		if !ok {
			return symbols.EntityRef{}, false
		}
		return symbols.LineRef(file, table.Anon.DefLine[ordinal]), true
	}
	return symbols.EntityRef{}, false
}

// cheapLocalAt resolves an "@name" cheap-local use or definition at offset
// on line0 to the line governing it, per the nearest-boundary rule.
func (w *Workspace) cheapLocalAt(file source.FileID, line0, offset uint32) (symbols.EntityRef, bool) {
	ln, ok := w.lexLine(file, line0)
	if !ok {
		return symbols.EntityRef{}, false
	}
	name := cheapLocalNameAt(ln, offset)
	if name == "" {
		return symbols.EntityRef{}, false
	}
	src := w.Files.Get(file)
	defLine, ok := anonlabel.ResolveCheapLocalDefinition(anonlabel.NewFileLines(src), name, line0)
	if !ok {
		return symbols.EntityRef{}, false
	}
	return symbols.LineRef(file, defLine), true
}

// cheapLocalNameAt returns the "@"-prefixed label or operand token
// covering offset on an already-lexed line, or "" if none does.
func cheapLocalNameAt(ln linelex.Line, offset uint32) string {
	if ln.Label != nil && strings.HasPrefix(ln.Label.Text, "@") &&
		ln.Label.Span.Start <= offset && offset < ln.Label.Span.End {
		return ln.Label.Text
	}
	for _, g := range argparse.Parse(ln.Args) {
		for _, tok := range g.Tokens {
			if strings.HasPrefix(tok.Text, "@") && tok.Span.Start <= offset && offset < tok.Span.End {
				return tok.Text
			}
		}
	}
	return ""
}

// EntitySpan returns the declaration span of an entity, and the file it
// lives in.
func (w *Workspace) EntitySpan(ref symbols.EntityRef) (source.Span, source.FileID, bool) {
	table, ok := w.Table(ref.File)
	if !ok {
		return source.Span{}, 0, false
	}
	switch ref.Kind {
	case symbols.EntitySymbol:
		if sym := table.Symbols.Get(ref.Symbol); sym != nil {
			return sym.Span, ref.File, true
		}
	case symbols.EntityScope:
		if scope := table.Scopes.Get(ref.Scope); scope != nil {
			return scope.Span, ref.File, true
		}
	case symbols.EntityMacro:
		if m := table.Macros.Get(ref.Macro); m != nil {
			return m.Span, ref.File, true
		}
	case symbols.EntityLine:
		src := w.Files.Get(ref.File)
		if src == nil {
			return source.Span{}, 0, false
		}
		return src.LineSpan(ref.Line), ref.File, true
	}
	return source.Span{}, 0, false
}

// EntityName returns the display name of an entity.
func (w *Workspace) EntityName(ref symbols.EntityRef) string {
	table, ok := w.Table(ref.File)
	if !ok {
		return ""
	}
	var id source.StringID
	switch ref.Kind {
	case symbols.EntitySymbol:
		if sym := table.Symbols.Get(ref.Symbol); sym != nil {
			id = sym.Name
		}
	case symbols.EntityScope:
		if scope := table.Scopes.Get(ref.Scope); scope != nil {
			id = scope.Name
		}
	case symbols.EntityMacro:
		if m := table.Macros.Get(ref.Macro); m != nil {
			id = m.Name
		}
	case symbols.EntityImport:
		if imp := table.Imports.Get(ref.Import); imp != nil {
			id = imp.Name
		}
	case symbols.EntityLine:
		if ln, ok := w.lexLine(ref.File, ref.Line); ok && ln.Label != nil {
			return ln.Label.Text
		}
		return ""
	}
	name, _ := table.Strings.Lookup(id)
	return name
}

// ReferencesTo finds every reference across the workspace that resolves to
// target, optionally including target's own declaration. Anonymous and
// cheap-local labels never appear in the scoped resolver's output, since
// neither lives in the symbol table, so an EntityLine target is answered by
// the textual rules in internal/anonlabel instead.
func (w *Workspace) ReferencesTo(target symbols.EntityRef, includeDeclaration bool) []Location {
	if target.Kind == symbols.EntityLine {
		return w.referencesToLine(target, includeDeclaration)
	}
	var out []Location
	for _, file := range w.Files.All() {
		table, ok := w.Table(file)
		if !ok {
			continue
		}
		for i, ref := range table.References.All() {
			refID := symbols.ReferenceID(i + 1) //nolint:gosec // bounded by References arena
			got, ok := w.Resolver.Resolve(file, ref, refID, w.Config.ImplicitImports)
			if !ok || !got.Equal(target) {
				continue
			}
			out = append(out, Location{File: file, Span: ref.Span})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Span.Start < out[j].Span.Start
	})
	if includeDeclaration {
		if span, file, ok := w.EntitySpan(target); ok {
			out = append([]Location{{File: file, Span: span}}, out...)
		}
	}
	return out
}

// referencesToLine answers ReferencesTo for an EntityLine target: an
// anonymous-label ordinal's recorded reference spans if target's line
// defines one, else the cheap-local-label references within its boundary.
func (w *Workspace) referencesToLine(target symbols.EntityRef, includeDeclaration bool) []Location {
	table, ok := w.Table(target.File)
	if !ok {
		return nil
	}
	src := w.Files.Get(target.File)
	if src == nil {
		return nil
	}

	var out []Location
	if ordinal, ok := anonOrdinal(table.Anon, target.Line); ok {
		for _, span := range table.Anon.RefsByOrdinal[ordinal] {
			out = append(out, Location{File: target.File, Span: span})
		}
	} else if ln, ok := w.lexLine(target.File, target.Line); ok && ln.Label != nil && strings.HasPrefix(ln.Label.Text, "@") {
		name := ln.Label.Text
		for _, line0 := range anonlabel.ReferencesInBoundary(anonlabel.NewFileLines(src), name, target.Line) {
			if line0 == target.Line {
				continue
			}
			lnAt, ok := w.lexLine(target.File, line0)
			if !ok {
				continue
			}
			for _, span := range cheapLocalSpansOnLine(lnAt, name) {
				out = append(out, Location{File: target.File, Span: span})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	if includeDeclaration {
		if span, file, ok := w.EntitySpan(target); ok {
			out = append([]Location{{File: file, Span: span}}, out...)
		}
	}
	return out
}

// anonOrdinal finds the ordinal whose definition sits on line, if any.
func anonOrdinal(anon *symbols.AnonymousLabels, line uint32) (int, bool) {
	for i, defLine := range anon.DefLine {
		if defLine == line {
			return i, true
		}
	}
	return 0, false
}

// cheapLocalSpansOnLine returns every span on an already-lexed line where
// name appears as a label definition or operand token.
func cheapLocalSpansOnLine(ln linelex.Line, name string) []source.Span {
	var out []source.Span
	if ln.Label != nil && ln.Label.Text == name {
		out = append(out, ln.Label.Span)
	}
	for _, g := range argparse.Parse(ln.Args) {
		for _, tok := range g.Tokens {
			if tok.Text == name {
				out = append(out, tok.Span)
			}
		}
	}
	return out
}

// CallEdge is one jsr/jmp call site linking a caller entity to a callee.
type CallEdge struct {
	Caller symbols.EntityRef
	Callee symbols.EntityRef
	File   source.FileID
	Span   source.Span
}

// CallersOf finds every jsr/jmp call site that resolves to target.
func (w *Workspace) CallersOf(target symbols.EntityRef) []CallEdge {
	var out []CallEdge
	for _, file := range w.Files.All() {
		table, ok := w.Table(file)
		if !ok {
			continue
		}
		for i, ref := range table.References.All() {
			if !ref.HasCaller {
				continue
			}
			refID := symbols.ReferenceID(i + 1) //nolint:gosec // bounded by References arena
			got, ok := w.Resolver.Resolve(file, ref, refID, w.Config.ImplicitImports)
			if !ok || !got.Equal(target) {
				continue
			}
			out = append(out, CallEdge{Caller: ref.Caller, Callee: got, File: file, Span: ref.Span})
		}
	}
	return out
}

// CalleesOf finds every jsr/jmp call site made from within caller's own body.
func (w *Workspace) CalleesOf(caller symbols.EntityRef) []CallEdge {
	var out []CallEdge
	for _, file := range w.Files.All() {
		table, ok := w.Table(file)
		if !ok {
			continue
		}
		for i, ref := range table.References.All() {
			if !ref.HasCaller || !ref.Caller.Equal(caller) {
				continue
			}
			refID := symbols.ReferenceID(i + 1) //nolint:gosec // bounded by References arena
			got, ok := w.Resolver.Resolve(file, ref, refID, w.Config.ImplicitImports)
			if !ok {
				continue
			}
			out = append(out, CallEdge{Caller: caller, Callee: got, File: file, Span: ref.Span})
		}
	}
	return out
}

// Candidate is one completion suggestion.
type Candidate struct {
	Name  string
	Kind  string
	Edits []Edit
}

// Edit is a text edit a completion candidate carries along with it: the
// auto-include or auto-import declaration an editor inserts when the
// candidate is accepted, in addition to inserting its label.
type Edit struct {
	File    source.FileID
	Span    source.Span
	NewText string
}

// CompletionCandidates lists completions for the cursor at offset in file.
// ca65 has two completion contexts depending on where the cursor sits on
// its line: command-context, before any command token, offers mnemonics,
// control-command directives, and .macro templates; operand-context offers
// every symbol and import visible from the current translation unit, the
// cheap-local labels governing the cursor's boundary, and ca65's
// pseudo-function and pseudo-variable vocabulary. A name reachable only
// through the workspace export map, or a file outside the translation
// unit, is offered with a prepared auto-import/auto-include text edit
// rather than omitted.
func (w *Workspace) CompletionCandidates(file source.FileID, offset uint32) []Candidate {
	table, ok := w.Table(file)
	if !ok {
		return nil
	}
	if w.isCommandContext(file, offset) {
		return commandContextCandidates(table)
	}
	return w.operandContextCandidates(file, offset)
}

// isCommandContext reports whether offset sits before any command token on
// its line: nothing typed yet, or the cursor is still inside the command
// word itself.
func (w *Workspace) isCommandContext(file source.FileID, offset uint32) bool {
	line0, ok := w.lineAt(file, offset)
	if !ok {
		return true
	}
	ln, ok := w.lexLine(file, line0)
	if !ok {
		return true
	}
	if ln.Args != nil && offset >= ln.Args.Span.Start {
		return false
	}
	if ln.Command != nil && offset > ln.Command.Span.End {
		return false
	}
	return true
}

func commandContextCandidates(table *symbols.Table) []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate
	add := func(name, kind string) {
		if name == "" {
			return
		}
		key := kind + ":" + name
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Candidate{Name: name, Kind: kind})
	}
	for _, m := range mnemonics {
		add(m, "mnemonic")
	}
	for _, d := range controlCommands {
		add(d, "directive")
	}
	for _, id := range table.Macros.All() {
		if m := table.Macros.Get(id); m != nil && m.Kind == symbols.MacroTemplate {
			name, _ := table.Strings.Lookup(m.Name)
			add(name, "macro")
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (w *Workspace) operandContextCandidates(file source.FileID, offset uint32) []Candidate {
	seen := make(map[string]struct{})
	visible := make(map[string]struct{})
	var out []Candidate
	add := func(name, kind string) (int, bool) {
		if name == "" {
			return -1, false
		}
		key := kind + ":" + name
		if _, dup := seen[key]; dup {
			return -1, false
		}
		seen[key] = struct{}{}
		visible[name] = struct{}{}
		out = append(out, Candidate{Name: name, Kind: kind})
		return len(out) - 1, true
	}

	tuFiles := w.Resolver.TranslationUnit(file)
	inTU := make(map[source.FileID]struct{}, len(tuFiles))
	for _, f := range tuFiles {
		inTU[f] = struct{}{}
		t, ok := w.Table(f)
		if !ok {
			continue
		}
		for i := 1; i <= t.Symbols.Len(); i++ {
			id := symbols.SymbolID(i) //nolint:gosec // bounded by Symbols.Len
			if sym := t.Symbols.Get(id); sym != nil {
				name, _ := t.Strings.Lookup(sym.Name)
				add(name, sym.Kind.String())
			}
		}
		for _, id := range t.Scopes.All() {
			if scope := t.Scopes.Get(id); scope != nil && scope.Name != source.NoStringID {
				name, _ := t.Strings.Lookup(scope.Name)
				add(name, scope.Kind.String())
			}
		}
		for i := 1; i <= t.Imports.Len(); i++ {
			id := symbols.ImportID(i) //nolint:gosec // bounded by Imports.Len
			if imp := t.Imports.Get(id); imp != nil {
				name, _ := t.Strings.Lookup(imp.Name)
				add(name, "import")
			}
		}
		for _, id := range t.Macros.All() {
			if m := t.Macros.Get(id); m != nil && m.Kind == symbols.MacroDefine {
				name, _ := t.Strings.Lookup(m.Name)
				add(name, "define")
			}
		}
	}

	if line0, ok := w.lineAt(file, offset); ok {
		if src := w.Files.Get(file); src != nil {
			for _, name := range anonlabel.CheapLocalsInBoundary(anonlabel.NewFileLines(src), line0) {
				add(name, "cheap-local")
			}
		}
	}

	for _, p := range pseudoFunctions {
		add(p, "pseudo-function")
	}
	for _, p := range pseudoVariables {
		add(p, "pseudo-variable")
	}

	for _, f := range w.Files.All() {
		if _, ok := inTU[f]; ok {
			continue
		}
		src := w.Files.Get(f)
		if src == nil || !hasAutoIncludeExtension(src.Path, w.Config.AutoInclude) {
			continue
		}
		rel := relativeToRoot(w, src.Path)
		edit, ok := w.prepareIncludeEdit(file, rel)
		if !ok {
			continue
		}
		if idx, ok := add(rel, "auto-include"); ok {
			out[idx].Edits = []Edit{edit}
		}
	}

	for _, nameID := range w.Exports.Names() {
		name, ok := w.Interner.Lookup(nameID)
		if !ok || name == "" {
			continue
		}
		if _, dup := visible[name]; dup {
			continue
		}
		if len(w.Exports.Lookup(nameID)) == 0 {
			continue
		}
		edit, ok := w.prepareImportEdit(file, name)
		if !ok {
			continue
		}
		if idx, ok := add(name, "auto-import"); ok {
			out[idx].Edits = []Edit{edit}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func hasAutoIncludeExtension(path string, allow []string) bool {
	for _, ext := range allow {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func relativeToRoot(w *Workspace, path string) string {
	if w.Root != "" {
		if rel, err := source.RelativePath(path, w.Root); err == nil && rel != "" {
			return rel
		}
	}
	return path
}

// includeEntry is one ".include" directive already present in a file, with
// its quoted path and the line it sits on.
type includeEntry struct {
	line uint32
	path string
}

// includeBlockLines returns the line past any leading comment block, and
// every existing ".include" directive in the file sorted lexically by path.
func includeBlockLines(src *source.File) (afterComments uint32, entries []includeEntry) {
	total := uint32(len(src.LineIdx)) + 1 //nolint:gosec // bounded by file size
	for afterComments < total {
		text := strings.TrimSpace(strings.TrimRight(src.GetLine(afterComments+1), "\r"))
		if text == "" || strings.HasPrefix(text, ";") {
			afterComments++
			continue
		}
		break
	}
	for n := uint32(0); n < total; n++ {
		text := strings.TrimRight(src.GetLine(n+1), "\r")
		ln := linelex.Lex(src.ID, 0, text)
		if ln.Command == nil || ln.Args == nil || !strings.EqualFold(ln.Command.Text, ".include") {
			continue
		}
		if path, ok := quotedPath(ln.Args.Text); ok {
			entries = append(entries, includeEntry{line: n, path: path})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	return afterComments, entries
}

func quotedPath(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// prepareIncludeEdit builds the text edit inserting `.include "path"` into
// file's include block, in lexical order among the block's existing
// entries, or after any leading comment block if there is no such block yet.
func (w *Workspace) prepareIncludeEdit(file source.FileID, path string) (Edit, bool) {
	src := w.Files.Get(file)
	if src == nil {
		return Edit{}, false
	}
	afterComments, entries := includeBlockLines(src)
	insertAt := afterComments
	for _, e := range entries {
		if e.path >= path {
			break
		}
		insertAt = e.line + 1
	}
	span := src.LineSpan(insertAt)
	return Edit{File: file, Span: source.Span{File: file, Start: span.Start, End: span.Start}, NewText: ".include \"" + path + "\"\n"}, true
}

// prepareImportEdit builds the text edit declaring `.import name`, inserted
// immediately after file's include block.
func (w *Workspace) prepareImportEdit(file source.FileID, name string) (Edit, bool) {
	src := w.Files.Get(file)
	if src == nil {
		return Edit{}, false
	}
	afterComments, entries := includeBlockLines(src)
	insertAt := afterComments
	for _, e := range entries {
		if e.line+1 > insertAt {
			insertAt = e.line + 1
		}
	}
	span := src.LineSpan(insertAt)
	return Edit{File: file, Span: source.Span{File: file, Start: span.Start, End: span.Start}, NewText: ".import " + name + "\n"}, true
}

// OutlineEntry is one node of a document's outline: a symbol, or a scope
// with its own nested outline.
type OutlineEntry struct {
	Name       string
	IsScope    bool
	ScopeKind  symbols.ScopeKind
	SymbolKind symbols.SymbolKind
	Span       source.Span
	Children   []OutlineEntry
}

// Outline builds file's document-symbol tree from its root scope down.
func (w *Workspace) Outline(file source.FileID) []OutlineEntry {
	table, ok := w.Table(file)
	if !ok {
		return nil
	}
	return outlineScope(table, table.Root)
}

func outlineScope(table *symbols.Table, scopeID symbols.ScopeID) []OutlineEntry {
	scope := table.Scopes.Get(scopeID)
	if scope == nil {
		return nil
	}
	type positioned struct {
		start uint32
		entry OutlineEntry
	}
	var items []positioned
	for _, symID := range scope.Symbols {
		sym := table.Symbols.Get(symID)
		if sym == nil {
			continue
		}
		name, _ := table.Strings.Lookup(sym.Name)
		if name == "" {
			continue
		}
		items = append(items, positioned{start: sym.Span.Start, entry: OutlineEntry{Name: name, SymbolKind: sym.Kind, Span: sym.Span}})
	}
	for _, childID := range scope.Children {
		child := table.Scopes.Get(childID)
		if child == nil {
			continue
		}
		name, _ := table.Strings.Lookup(child.Name)
		entry := OutlineEntry{
			Name:      name,
			IsScope:   true,
			ScopeKind: child.Kind,
			Span:      source.Span{File: child.Span.File, Start: child.Span.Start, End: child.End.End},
			Children:  outlineScope(table, childID),
		}
		items = append(items, positioned{start: child.Span.Start, entry: entry})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].start < items[j].start })
	out := make([]OutlineEntry, 0, len(items))
	for _, it := range items {
		out = append(out, it.entry)
	}
	return out
}

// FoldingRange is one collapsible region: a scope or macro body.
type FoldingRange struct {
	Start source.Span
	End   source.Span
}

// FoldingRanges builds every foldable region in file: every non-root scope
// (.proc/.scope/.struct/.union/.enum bodies) and every .macro body; a .define
// has no body and gets no range.
func (w *Workspace) FoldingRanges(file source.FileID) []FoldingRange {
	table, ok := w.Table(file)
	if !ok {
		return nil
	}
	var out []FoldingRange
	for _, id := range table.Scopes.All() {
		scope := table.Scopes.Get(id)
		if scope == nil || scope.Kind == symbols.ScopeRoot {
			continue
		}
		out = append(out, FoldingRange{Start: scope.Span, End: scope.End})
	}
	for _, id := range table.Macros.All() {
		m := table.Macros.Get(id)
		if m == nil || m.Kind != symbols.MacroTemplate {
			continue
		}
		out = append(out, FoldingRange{Start: m.Span, End: m.End})
	}
	return out
}
