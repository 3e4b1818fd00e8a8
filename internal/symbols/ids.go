package symbols

// ScopeID identifies a scope inside a file's scope arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a symbol inside a file's symbol arena.
type SymbolID uint32

const (
	// NoSymbolID marks the absence of a symbol reference.
	NoSymbolID SymbolID = 0
)

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// ImportID identifies an import/global declaration inside a file's import arena.
type ImportID uint32

const (
	// NoImportID marks the absence of an import reference.
	NoImportID ImportID = 0
)

// IsValid reports whether the import ID refers to an allocated import.
func (id ImportID) IsValid() bool { return id != NoImportID }

// MacroID identifies a macro or define inside a file's flat macro table.
type MacroID uint32

const (
	// NoMacroID marks the absence of a macro reference.
	NoMacroID MacroID = 0
)

// IsValid reports whether the macro ID refers to an allocated macro.
func (id MacroID) IsValid() bool { return id != NoMacroID }
