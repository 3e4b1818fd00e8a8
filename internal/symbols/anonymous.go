package symbols

import "ca65ls/internal/source"

// AnonymousLabels indexes a file's bare ":" label definitions by ordinal,
// plus the reference spans that resolved to each ordinal at scan time. The
// resolution rule itself lives in the anonlabel package; this is storage.
type AnonymousLabels struct {
	// DefLine[i] is the source line (0-based) of the i-th anonymous label.
	DefLine []uint32
	// RefsByOrdinal[i] are the reference spans whose resolution landed on
	// ordinal i, in scan order.
	RefsByOrdinal map[int][]source.Span
}

func newAnonymousLabels() *AnonymousLabels {
	return &AnonymousLabels{RefsByOrdinal: make(map[int][]source.Span)}
}

// Define appends a new anonymous-label definition and returns its ordinal.
func (a *AnonymousLabels) Define(line uint32) int {
	a.DefLine = append(a.DefLine, line)
	return len(a.DefLine) - 1
}

// RecordReference notes that a reference span resolved to the given ordinal.
func (a *AnonymousLabels) RecordReference(ordinal int, span source.Span) {
	if ordinal < 0 {
		return
	}
	a.RefsByOrdinal[ordinal] = append(a.RefsByOrdinal[ordinal], span)
}

// Len reports how many anonymous labels are defined in the file.
func (a *AnonymousLabels) Len() int { return len(a.DefLine) }
