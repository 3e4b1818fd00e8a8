package symbols

import "ca65ls/internal/source"

// ImportKind distinguishes a plain .import/.importzp from a .global/.globalzp,
// which behaves as both an import and an export depending on whether a local
// definition turns up when resolving.
type ImportKind uint8

const (
	ImportInvalid ImportKind = iota
	ImportPlain
	ImportGlobal
)

// Import is a declaration that a name originates elsewhere, recorded in the
// scope where it was declared so the scoped lookup walk can find it as a
// fallback behind concrete symbols and child scopes.
type Import struct {
	Name    source.StringID
	Kind    ImportKind
	Scope   ScopeID
	Span    source.Span
	ZeroPage bool
}

// ExportKind distinguishes a plain .export/.exportzp from a .global/.globalzp.
type ExportKind uint8

const (
	ExportInvalid ExportKind = iota
	ExportPlain
	ExportGlobal
)

// Export is a declaration that a local name is visible workspace-wide. It is
// collected per file and contributed to the workspace exports map; Scope
// records where in the file's scope tree the declaration lives, since
// workspace export lookup resumes searching from that scope.
type Export struct {
	Name     source.StringID
	Kind     ExportKind
	Scope    ScopeID
	Span     source.Span
	ZeroPage bool
	// HasValue is set for "`.export name=value`"; the scanner also emits a
	// SymbolConstant for name at ValueSpan in this case.
	HasValue  bool
	ValueSpan source.Span
}
