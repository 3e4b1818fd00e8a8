// Package exportmap is the workspace-wide index of every file's exported
// names, keyed by base name, used as the resolver's cross-file fallback
// once a translation-unit-local lookup fails.
package exportmap

import (
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// Entry is one exporting declaration, naming the file and scope a lookup
// should resume from to find the concrete definition.
type Entry struct {
	File  source.FileID
	Scope symbols.ScopeID
	Kind  symbols.ExportKind
	Span  source.Span
}

// Map holds, per base name, the stack of files that export it. Each file
// contributes at most one Entry per name; a rescan atomically replaces a
// file's whole contribution.
type Map struct {
	byName map[source.StringID][]Entry
	byFile map[source.FileID]map[source.StringID]struct{}
}

// New returns an empty exports map.
func New() *Map {
	return &Map{
		byName: make(map[source.StringID][]Entry),
		byFile: make(map[source.FileID]map[source.StringID]struct{}),
	}
}

// UpdateExports atomically replaces file's contribution to the map with
// exports, so a full rescan's result always wins over partial stale state.
// When file declares a name more than once (e.g. .global and .export of the
// same name), only the first declaration is kept.
func (m *Map) UpdateExports(file source.FileID, exports []symbols.Export) {
	m.RemoveFile(file)
	names := make(map[source.StringID]struct{}, len(exports))
	for _, e := range exports {
		if _, dup := names[e.Name]; dup {
			continue
		}
		entry := Entry{File: file, Scope: e.Scope, Kind: e.Kind, Span: e.Span}
		m.byName[e.Name] = append(m.byName[e.Name], entry)
		names[e.Name] = struct{}{}
	}
	m.byFile[file] = names
}

// RemoveFile drops every export file previously contributed, e.g. before a
// rescan or when the file is deleted from the workspace.
func (m *Map) RemoveFile(file source.FileID) {
	for name := range m.byFile[file] {
		entries := m.byName[name]
		kept := entries[:0]
		for _, e := range entries {
			if e.File != file {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(m.byName, name)
		} else {
			m.byName[name] = kept
		}
	}
	delete(m.byFile, file)
}

// Names returns every base name currently exported by at least one file,
// in no particular order; used to offer cross-file completion candidates.
func (m *Map) Names() []source.StringID {
	out := make([]source.StringID, 0, len(m.byName))
	for name := range m.byName {
		out = append(out, name)
	}
	return out
}

// Lookup returns every file's export of name, across the whole workspace.
// More than one entry means the name is exported ambiguously; callers
// decide how to report or disambiguate that.
func (m *Map) Lookup(name source.StringID) []Entry {
	return m.byName[name]
}
