// Package anonlabel implements the ordinal-based resolution rule for bare
// ":" anonymous labels and the textual-boundary resolution rule for "@"
// cheap-local labels. Neither construct lives in the scoped symbol tree.
package anonlabel

import (
	"sort"
	"strings"

	"ca65ls/internal/linelex"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// Reference is one ":"-style anonymous-label use found on a line.
type Reference struct {
	Span   source.Span
	Offset int
}

// FindReferences scans args text for the ":[-+<>]+" pattern and returns
// every match, with Offset computed as (count of '+'/'>') minus (count of
// '-'/'<'); a bare ":" with no following sign character is a label
// definition, not a reference, and is never matched here.
func FindReferences(args *linelex.Item) []Reference {
	if args == nil {
		return nil
	}
	text := args.Text
	var out []Reference
	for i := 0; i < len(text); i++ {
		if text[i] != ':' {
			continue
		}
		j := i + 1
		offset := 0
		for j < len(text) && isSignChar(text[j]) {
			if text[j] == '+' || text[j] == '>' {
				offset++
			} else {
				offset--
			}
			j++
		}
		if j == i+1 {
			continue // bare ':' with no sign run: not a reference
		}
		start := args.Span.Start + uint32(i) //nolint:gosec // bounded by line length
		end := args.Span.Start + uint32(j)   //nolint:gosec // bounded by line length
		out = append(out, Reference{
			Span:   source.Span{File: args.Span.File, Start: start, End: end},
			Offset: offset,
		})
		i = j - 1
	}
	return out
}

func isSignChar(c byte) bool { return c == '+' || c == '>' || c == '-' || c == '<' }

// Resolve applies the §4.8 rule: binary-search the sorted ordinal→line
// array for the last ordinal whose definition line is <= atLine, then apply
// the signed offset. That last ordinal is itself the first label back, so
// ":-" names it and ":--" the one before it, while ":+" names the next one.
// Returns false if the resulting ordinal is out of range.
func Resolve(anon *symbols.AnonymousLabels, atLine uint32, offset int) (int, bool) {
	defLines := anon.DefLine
	i := sort.Search(len(defLines), func(i int) bool { return defLines[i] > atLine }) - 1
	if offset < 0 {
		offset++
	}
	ordinal := i + offset
	if ordinal < 0 || ordinal >= len(defLines) {
		return 0, false
	}
	return ordinal, true
}

// Boundary classifies a line for cheap-local scoping purposes: a boundary
// is either a non-cheap label definition or a .proc/.struct/.union opener.
func isBoundary(line linelex.Line) (isLabel bool, name string) {
	if line.Label != nil && line.Label.Text != "" && !strings.HasPrefix(line.Label.Text, "@") {
		return true, line.Label.Text
	}
	if line.Command != nil {
		switch strings.ToLower(line.Command.Text) {
		case ".proc", ".struct", ".union":
			return true, ""
		}
	}
	return false, ""
}

// LineProvider returns the raw text of a 0-based source line, or "", false
// past end of file.
type LineProvider interface {
	Line(n uint32) (string, bool)
}

// fileLines adapts a *source.File to LineProvider.
type fileLines struct{ f *source.File }

// NewFileLines wraps f so ResolveCheapLocal can walk its lines directly.
func NewFileLines(f *source.File) LineProvider { return fileLines{f: f} }

func (fl fileLines) Line(n uint32) (string, bool) {
	total := uint32(len(fl.f.LineIdx)) + 1 //nolint:gosec // bounded by file size
	if n+1 > total {
		return "", false
	}
	return fl.f.GetLine(n + 1), true // File.GetLine is 1-based
}

// ResolveCheapLocalDefinition finds the line defining the cheap-local label
// name that governs referenceLine: the nearest non-cheap label/opener
// boundary at or before referenceLine, then the first "@name:" line at or
// after that boundary and at or before referenceLine.
func ResolveCheapLocalDefinition(lines LineProvider, name string, referenceLine uint32) (uint32, bool) {
	boundary := precedingBoundary(lines, referenceLine)
	for n := boundary; n <= referenceLine; n++ {
		text, ok := lines.Line(n)
		if !ok {
			break
		}
		ln := linelex.Lex(0, 0, text)
		if ln.Label != nil && ln.Label.Text == name {
			return n, true
		}
	}
	return 0, false
}

// ReferencesInBoundary enumerates the lines, within the boundary spanning
// referenceLine, that reference the cheap-local label name.
func ReferencesInBoundary(lines LineProvider, name string, referenceLine uint32) []uint32 {
	start := precedingBoundary(lines, referenceLine)
	end := followingBoundary(lines, referenceLine)
	var out []uint32
	for n := start; n <= end; n++ {
		text, ok := lines.Line(n)
		if !ok {
			break
		}
		if strings.Contains(text, name) {
			out = append(out, n)
		}
	}
	return out
}

// CheapLocalsInBoundary returns the distinct "@name" label definitions
// within the boundary containing atLine, in first-seen order, for
// completion's enclosing-boundary candidate list.
func CheapLocalsInBoundary(lines LineProvider, atLine uint32) []string {
	start := precedingBoundary(lines, atLine)
	end := followingBoundary(lines, atLine)
	seen := make(map[string]struct{})
	var out []string
	for n := start; n <= end; n++ {
		text, ok := lines.Line(n)
		if !ok {
			break
		}
		ln := linelex.Lex(0, 0, text)
		if ln.Label == nil || !strings.HasPrefix(ln.Label.Text, "@") {
			continue
		}
		if _, dup := seen[ln.Label.Text]; dup {
			continue
		}
		seen[ln.Label.Text] = struct{}{}
		out = append(out, ln.Label.Text)
	}
	return out
}

func precedingBoundary(lines LineProvider, from uint32) uint32 {
	for n := from; ; {
		text, ok := lines.Line(n)
		if !ok {
			return 0
		}
		if boundary, _ := isBoundary(linelex.Lex(0, 0, text)); boundary {
			return n
		}
		if n == 0 {
			return 0
		}
		n--
	}
}

func followingBoundary(lines LineProvider, from uint32) uint32 {
	n := from + 1
	for {
		text, ok := lines.Line(n)
		if !ok {
			return n - 1
		}
		if boundary, _ := isBoundary(linelex.Lex(0, 0, text)); boundary {
			return n - 1
		}
		n++
	}
}
