// Package resolver answers "what does this reference name" queries,
// walking a translation unit's scope trees first and falling back to the
// workspace-wide export map, memoizing both kinds of answer per file.
package resolver

import (
	"ca65ls/internal/exportmap"
	"ca65ls/internal/includegraph"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// Engine owns every file's table plus the includes graph and export map
// needed to resolve references that cross file boundaries.
type Engine struct {
	tables   map[source.FileID]*symbols.Table
	graph    *includegraph.Graph
	exports  *exportmap.Map
	interner *source.Interner

	// localCache holds resolutions found by walking the translation unit's
	// own scope trees; invalidated whenever any file in that TU rescans.
	localCache map[source.FileID]map[cacheKey]symbols.EntityRef
	// exportCache holds resolutions that needed the workspace export map;
	// invalidated whenever the export map itself changes.
	exportCache map[source.FileID]map[cacheKey]symbols.EntityRef
}

// cacheKey distinguishes resolutions of the same reference made under
// different implicit-imports settings: step 3 (and, when implicit imports
// are disabled, the short-circuit on a remembered import) depends on the
// flag, so a cached answer under one setting must never answer a query made
// under the other.
type cacheKey struct {
	ref      symbols.ReferenceID
	implicit bool
}

// New builds a resolver sharing graph, exports and interner with the rest
// of the workspace orchestrator.
func New(graph *includegraph.Graph, exports *exportmap.Map, interner *source.Interner) *Engine {
	return &Engine{
		tables:      make(map[source.FileID]*symbols.Table),
		graph:       graph,
		exports:     exports,
		interner:    interner,
		localCache:  make(map[source.FileID]map[cacheKey]symbols.EntityRef),
		exportCache: make(map[source.FileID]map[cacheKey]symbols.EntityRef),
	}
}

// SetTable installs (or replaces) file's freshly scanned table.
func (e *Engine) SetTable(file source.FileID, table *symbols.Table) {
	e.tables[file] = table
}

// Table returns the table currently installed for file, if any.
func (e *Engine) Table(file source.FileID) (*symbols.Table, bool) {
	t, ok := e.tables[file]
	return t, ok
}

// InvalidateFile drops every cached resolution whose translation unit
// includes file: file itself, its ancestors and descendants in the includes
// graph, and every file one of those ancestors includes. This covers both
// "file changed" and "a file file depends on changed" without re-deriving
// fine-grained dependency edges per reference.
func (e *Engine) InvalidateFile(file source.FileID) {
	ancestors := e.graph.Ancestors(file)
	affected := append([]source.FileID{file}, ancestors...)
	affected = append(affected, e.graph.Descendants(file)...)
	for _, anc := range ancestors {
		affected = append(affected, e.graph.Descendants(anc)...)
	}
	for _, f := range affected {
		delete(e.localCache, f)
		delete(e.exportCache, f)
	}
}

// InvalidateExports drops every cached export-backed resolution; called
// whenever the workspace export map changes, since an export resolution in
// any file may now point at stale or newly shadowed state.
func (e *Engine) InvalidateExports() {
	e.exportCache = make(map[source.FileID]map[cacheKey]symbols.EntityRef)
}

// Resolve answers what ref (observed in file) names, per the three-step
// rule: a translation-unit-local scoped walk; if that walk only turned up
// an import declaration, a workspace export lookup for that import's name;
// and, when the local walk found nothing at all, a reference that is a
// symbol-context use in root scope, and implicitImports is enabled, a
// workspace export lookup for the reference's own name.
func (e *Engine) Resolve(file source.FileID, ref *symbols.Reference, refID symbols.ReferenceID, implicitImports bool) (symbols.EntityRef, bool) {
	key := cacheKey{ref: refID, implicit: implicitImports}
	if cached, ok := e.localCache[file][key]; ok {
		return cached, !cached.IsZero()
	}
	if cached, ok := e.exportCache[file][key]; ok {
		return cached, !cached.IsZero()
	}

	table, ok := e.tables[file]
	if !ok {
		return symbols.EntityRef{}, false
	}

	var remembered symbols.EntityRef
	hasImport := false
	if got, ok := table.Lookup(ref.Scope, ref.Qualifier, ref.Context, true); ok {
		if got.Kind != symbols.EntityImport {
			e.cacheLocal(file, key, got)
			return got, true
		}
		remembered, hasImport = got, true
	}

	for _, other := range e.translationUnit(file) {
		if other == file {
			continue
		}
		otherTable, ok := e.tables[other]
		if !ok {
			continue
		}
		if got, ok := otherTable.Lookup(otherTable.Root, ref.Qualifier, ref.Context, false); ok {
			e.cacheLocal(file, key, got)
			return got, true
		}
	}

	if !hasImport && (!implicitImports || ref.Context != symbols.RefSymbol || ref.Scope != table.Root) {
		e.cacheLocal(file, key, symbols.EntityRef{})
		return symbols.EntityRef{}, false
	}
	if hasImport && !implicitImports {
		e.cacheLocal(file, key, remembered)
		return remembered, true
	}

	base := ref.Qualifier.Base()
	if hasImport {
		if imp := table.Imports.Get(remembered.Import); imp != nil {
			base = imp.Name
		}
	}
	for _, entry := range e.exports.Lookup(base) {
		exportTable, ok := e.tables[entry.File]
		if !ok {
			continue
		}
		chain := symbols.QualifierChain{Parts: []source.StringID{base}}
		if got, ok := exportTable.Lookup(entry.Scope, chain, ref.Context, false); ok {
			e.cacheExport(file, key, got)
			return got, true
		}
	}

	if hasImport {
		e.cacheExport(file, key, remembered)
		return remembered, true
	}
	e.cacheExport(file, key, symbols.EntityRef{})
	return symbols.EntityRef{}, false
}

func (e *Engine) cacheLocal(file source.FileID, key cacheKey, ref symbols.EntityRef) {
	if e.localCache[file] == nil {
		e.localCache[file] = make(map[cacheKey]symbols.EntityRef)
	}
	e.localCache[file][key] = ref
}

func (e *Engine) cacheExport(file source.FileID, key cacheKey, ref symbols.EntityRef) {
	if e.exportCache[file] == nil {
		e.exportCache[file] = make(map[cacheKey]symbols.EntityRef)
	}
	e.exportCache[file][key] = ref
}

// TranslationUnit returns every file sharing a translation unit with file:
// its roots' full closures, deduplicated. A file with no root of its own
// (e.g. it is itself a root) uses its own closure. Exported for query
// adapters (e.g. completion's visibility rule) that need the same closure
// the resolver itself walks.
func (e *Engine) TranslationUnit(file source.FileID) []source.FileID {
	return e.translationUnit(file)
}

func (e *Engine) translationUnit(file source.FileID) []source.FileID {
	roots := e.graph.Ancestors(file)
	if len(roots) == 0 {
		return e.graph.TranslationUnit(file)
	}
	seen := map[source.FileID]struct{}{}
	var out []source.FileID
	for _, root := range roots {
		for _, f := range e.graph.TranslationUnit(root) {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				out = append(out, f)
			}
		}
	}
	return out
}
