package diag

import (
	"ca65ls/internal/source"
)

// Note is a secondary span/message attached to a Diagnostic for extra
// context, e.g. "first declared here" pointing at a duplicate symbol's
// original definition.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single finding against a scanned file.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
