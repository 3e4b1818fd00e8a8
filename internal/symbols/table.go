package symbols

import (
	"sort"

	"ca65ls/internal/source"
)

// Table is the scoped symbol table owned by exactly one file. It is rebuilt
// wholesale on every rescan and replaces the file's previous table
// atomically once the scan completes.
type Table struct {
	File    source.FileID
	Strings *source.Interner

	Scopes     *Scopes
	Symbols    *Symbols
	Imports    *Imports
	Macros     *Macros
	References *References
	Exports    *Exports
	Anon       *AnonymousLabels

	Root ScopeID
}

// NewTable builds an empty table for file, rooted at a fresh, unnamed root
// scope. strings must be the engine-wide interner shared by every file, so
// that names compare equal across files during cross-file resolution.
func NewTable(file source.FileID, strings *source.Interner) *Table {
	t := &Table{
		File:       file,
		Strings:    strings,
		Scopes:     newScopes(),
		Symbols:    newSymbols(),
		Imports:    newImports(),
		Macros:     newMacros(),
		References: newReferences(),
		Exports:    newExports(),
		Anon:       newAnonymousLabels(),
	}
	t.Root = t.Scopes.add(newScope(ScopeRoot, source.NoStringID, NoScopeID, source.Span{File: file}, "CODE"))
	return t
}

// OpenScope creates a child scope of kind under parent, named name, and
// registers it in the parent's child index. An unnamed scope (name is
// source.NoStringID) is added to the parent's Children but not to its
// ChildIndex, so lookup by name never finds it.
func (t *Table) OpenScope(kind ScopeKind, parent ScopeID, name source.StringID, span source.Span, segment string) ScopeID {
	id := t.Scopes.add(newScope(kind, name, parent, span, segment))
	if p := t.Scopes.Get(parent); p != nil {
		p.Children = append(p.Children, id)
		if name != source.NoStringID {
			p.ChildIndex[name] = append(p.ChildIndex[name], id)
		}
	}
	return id
}

// CloseScope sets a scope's end span, e.g. from a matching .end directive
// or from end-of-file for a scope left open.
func (t *Table) CloseScope(id ScopeID, end source.Span) {
	if s := t.Scopes.Get(id); s != nil {
		s.End = end
	}
}

// AddSymbol declares sym inside scope and registers it in the scope's
// symbol index.
func (t *Table) AddSymbol(scope ScopeID, sym Symbol) SymbolID {
	sym.Scope = scope
	id := t.Symbols.add(&sym)
	if s := t.Scopes.Get(scope); s != nil {
		s.Symbols = append(s.Symbols, id)
		s.SymbolIndex[sym.Name] = append(s.SymbolIndex[sym.Name], id)
	}
	return id
}

// AddImport declares imp inside scope and registers it in the scope's
// import index.
func (t *Table) AddImport(scope ScopeID, imp Import) ImportID {
	imp.Scope = scope
	id := t.Imports.add(&imp)
	if s := t.Scopes.Get(scope); s != nil {
		s.Imports = append(s.Imports, id)
		s.ImportIndex[imp.Name] = append(s.ImportIndex[imp.Name], id)
	}
	return id
}

// AddExport records an export declaration; exports are collected wholesale
// by Table.ExportList and fed to the workspace exports map after scanning.
func (t *Table) AddExport(exp Export) { t.Exports.add(&exp) }

// ExportList returns every export declaration raised while scanning this file.
func (t *Table) ExportList() []Export { return t.Exports.All() }

// AddReference records a use site observed while scanning.
func (t *Table) AddReference(ref Reference) ReferenceID {
	return t.References.add(&ref)
}

// ReferenceAt returns the reference whose span contains offset, if any.
// References are appended in non-decreasing Start order by the scanner's
// single forward pass, so a binary search locates the candidate.
func (t *Table) ReferenceAt(offset uint32) (*Reference, bool) {
	all := t.References.All()
	i := sort.Search(len(all), func(i int) bool { return all[i].Span.Start > offset })
	for j := i - 1; j >= 0; j-- {
		r := all[j]
		if r.Span.Start <= offset && offset < r.Span.End {
			return r, true
		}
		if r.Span.End <= offset {
			break
		}
	}
	return nil, false
}

// ScopeAt returns the innermost scope whose span contains offset.
func (t *Table) ScopeAt(offset uint32) ScopeID {
	cur := t.Root
	for {
		scope := t.Scopes.Get(cur)
		if scope == nil {
			return cur
		}
		descended := false
		for _, childID := range scope.Children {
			child := t.Scopes.Get(childID)
			if child == nil {
				continue
			}
			if child.Span.Start <= offset && offset < child.End.End {
				cur = childID
				descended = true
				break
			}
		}
		if !descended {
			return cur
		}
	}
}

// ScopeStack returns the chain of scope names from the file root (exclusive)
// down to scope (inclusive), e.g. for "::Foo::Bar" it returns [Foo, Bar].
func (t *Table) ScopeStack(scope ScopeID) []source.StringID {
	var stack []source.StringID
	for cur := scope; cur != t.Root && cur.IsValid(); {
		s := t.Scopes.Get(cur)
		if s == nil {
			break
		}
		if s.Name != source.NoStringID {
			stack = append(stack, s.Name)
		}
		cur = s.Parent
	}
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// attempt performs one non-upward lookup try: descend the qualifier's
// scope-prefix tokens as child scopes from start, then search the terminal
// scope for the base name, in order: child scope (if context is scope or
// the child is a proc), local symbol, import (if allowed).
func (t *Table) attempt(start ScopeID, chain QualifierChain, ctx ReferenceContext, allowImports bool) (EntityRef, bool) {
	cur := start
	for _, tok := range chain.Scopes() {
		scope := t.Scopes.Get(cur)
		if scope == nil {
			return EntityRef{}, false
		}
		child, ok := scope.FirstChild(tok)
		if !ok {
			return EntityRef{}, false
		}
		cur = child
	}
	scope := t.Scopes.Get(cur)
	if scope == nil {
		return EntityRef{}, false
	}
	base := chain.Base()
	if childID, ok := scope.FirstChild(base); ok {
		if child := t.Scopes.Get(childID); child != nil {
			if ctx == RefScope || child.Kind == ScopeProc {
				return ScopeRef(t.File, childID), true
			}
		}
	}
	if symID, ok := scope.FirstSymbol(base); ok {
		return SymbolRef(t.File, symID), true
	}
	if allowImports {
		if impID, ok := scope.FirstImport(base); ok {
			return ImportRef(t.File, impID), true
		}
	}
	return EntityRef{}, false
}

// Lookup resolves chain starting from scope from, per §4.4: an absolute
// chain (leading "::") is tried only at the file root; otherwise the walk
// starts at from and retries at each enclosing scope up to the root.
func (t *Table) Lookup(from ScopeID, chain QualifierChain, ctx ReferenceContext, allowImports bool) (EntityRef, bool) {
	if chain.Absolute {
		return t.attempt(t.Root, chain, ctx, allowImports)
	}
	cur := from
	for {
		if ref, ok := t.attempt(cur, chain, ctx, allowImports); ok {
			return ref, true
		}
		if cur == t.Root {
			return EntityRef{}, false
		}
		scope := t.Scopes.Get(cur)
		if scope == nil {
			return EntityRef{}, false
		}
		cur = scope.Parent
	}
}

// ShortestRelativeName finds the shortest qualifier chain, among suffixes
// of the entity's full scope-qualified name, that resolves back to entity
// when looked up from query scope. If no suffix resolves, the absolute
// "::"-prefixed form is returned.
func (t *Table) ShortestRelativeName(query ScopeID, entityScope ScopeID, base source.StringID, entity EntityRef) string {
	stack := t.ScopeStack(entityScope)
	render := func(parts []source.StringID, absolute bool) string {
		out := ""
		if absolute {
			out = "::"
		}
		for i, p := range parts {
			if i > 0 {
				out += "::"
			}
			out += t.Strings.MustLookup(p)
		}
		return out
	}

	for length := 0; length <= len(stack); length++ {
		suffix := stack[len(stack)-length:]
		parts := append(append([]source.StringID(nil), suffix...), base)
		chain := QualifierChain{Parts: parts}
		if got, ok := t.Lookup(query, chain, RefSymbol, true); ok && got.Equal(entity) {
			return render(parts, false)
		}
	}
	full := append(append([]source.StringID(nil), stack...), base)
	return render(full, true)
}
