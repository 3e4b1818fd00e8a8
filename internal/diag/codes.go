package diag

import "fmt"

// Code is a compact numeric diagnostic identifier, grouped by category so
// its prefix alone tells you roughly where it came from.
type Code uint16

const (
	UnknownCode Code = 0

	// Symbol-table diagnostics: duplicate/unresolved/shadowed names found
	// while scanning a single file or resolving references across files.
	SymInfo             Code = 1000
	SymDuplicateSymbol  Code = 1001
	SymUnresolvedSymbol Code = 1002
	SymUnusedSymbol     Code = 1003
	SymShadowedLabel    Code = 1004
	SymScopeMismatch    Code = 1005

	// Include-graph diagnostics.
	IncInfo            Code = 2000
	IncUnresolved      Code = 2001
	IncCycle           Code = 2002
	IncSelfInclude     Code = 2003
	IncDuplicateExport Code = 2004

	// I/O diagnostics: reading a file or a configured include directory.
	IOLoadFileError Code = 3001

	// Observability.
	ObsInfo    Code = 4000
	ObsTimings Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown diagnostic",
	SymInfo:             "Symbol table information",
	SymDuplicateSymbol:  "Duplicate symbol definition",
	SymUnresolvedSymbol: "Unresolved symbol reference",
	SymUnusedSymbol:     "Symbol is never referenced",
	SymShadowedLabel:    "Label shadows an outer scope's symbol",
	SymScopeMismatch:    "Unbalanced .scope/.proc/.endscope/.endproc",
	IncInfo:             "Include graph information",
	IncUnresolved:       "Could not resolve include target",
	IncCycle:            "Include cycle detected",
	IncSelfInclude:      "File includes itself",
	IncDuplicateExport:  "Same name exported by more than one file",
	IOLoadFileError:     "I/O error loading file",
	ObsInfo:             "Observability information",
	ObsTimings:          "Scan pipeline timings",
}

// ID renders the code as a stable, grouped string like "SYM1001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYM%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("INC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
