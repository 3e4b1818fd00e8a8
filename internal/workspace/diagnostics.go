package workspace

import (
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// UnusedSymbol is a declared entity that nothing in the workspace refers to.
type UnusedSymbol struct {
	File source.FileID
	Name string
	Span source.Span
}

// UnusedSymbols finds every local symbol and proc that is neither exported
// nor referenced anywhere in the workspace. Struct and enum members are
// exempt: they describe a type's shape rather than a call or data site, so
// an unused field is not a meaningful diagnostic here.
func (w *Workspace) UnusedSymbols() []UnusedSymbol {
	used := w.usedEntities()

	var out []UnusedSymbol
	for _, file := range w.Files.All() {
		table, ok := w.Table(file)
		if !ok {
			continue
		}
		exported := exportedNames(table)

		for i := 1; i <= table.Symbols.Len(); i++ {
			id := symbols.SymbolID(i) //nolint:gosec // bounded by Symbols.Len
			sym := table.Symbols.Get(id)
			if sym == nil {
				continue
			}
			switch sym.Kind {
			case symbols.SymbolStructMember, symbols.SymbolEnumMember:
				continue
			}
			if _, ok := exported[sym.Name]; ok {
				continue
			}
			if _, ok := used[symbols.SymbolRef(file, id)]; ok {
				continue
			}
			name, _ := table.Strings.Lookup(sym.Name)
			out = append(out, UnusedSymbol{File: file, Name: name, Span: sym.Span})
		}

		for _, id := range table.Scopes.All() {
			scope := table.Scopes.Get(id)
			if scope == nil || scope.Kind != symbols.ScopeProc || scope.Name == source.NoStringID {
				continue
			}
			if _, ok := exported[scope.Name]; ok {
				continue
			}
			if _, ok := used[symbols.ScopeRef(file, id)]; ok {
				continue
			}
			name, _ := table.Strings.Lookup(scope.Name)
			out = append(out, UnusedSymbol{File: file, Name: name, Span: scope.Span})
		}
	}
	return out
}

// usedEntities resolves every reference in every known file and returns the
// set of entities at least one reference lands on.
func (w *Workspace) usedEntities() map[symbols.EntityRef]struct{} {
	used := make(map[symbols.EntityRef]struct{})
	for _, file := range w.Files.All() {
		table, ok := w.Table(file)
		if !ok {
			continue
		}
		for i, ref := range table.References.All() {
			refID := symbols.ReferenceID(i + 1) //nolint:gosec // bounded by References arena
			if got, ok := w.Resolver.Resolve(file, ref, refID, w.Config.ImplicitImports); ok {
				used[got] = struct{}{}
			}
		}
	}
	return used
}

func exportedNames(table *symbols.Table) map[source.StringID]struct{} {
	out := make(map[source.StringID]struct{})
	for _, exp := range table.ExportList() {
		out[exp.Name] = struct{}{}
	}
	return out
}
