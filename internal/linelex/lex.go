// Package linelex splits one raw ca65 source line into its label, command,
// argument, and comment items, each carrying its original byte offset.
package linelex

import (
	"strings"

	"fortio.org/safecast"

	"ca65ls/internal/source"
)

// Item is a lexed fragment of a line, with its original byte span.
type Item struct {
	Text string
	Span source.Span
}

// Line holds the (up to four) items a line decomposes into. Any of them may
// be nil when the corresponding part is absent.
type Line struct {
	Label   *Item
	Command *Item
	Args    *Item
	Comment *Item
}

// Lex splits text (one line, no trailing newline) into its items. lineStart
// is the byte offset of text[0] within file, used to produce absolute spans.
func Lex(file source.FileID, lineStart uint32, text string) Line {
	content, comment := splitComment(text)

	var line Line
	if comment != nil {
		line.Comment = &Item{Text: comment.Text, Span: withFile(file, lineStart, comment.Span)}
	}

	pos := skipSpaces(content, 0)
	word, wordEnd := scanWord(content, pos)

	cursor := pos
	switch {
	case word != "" && wordEnd < len(content) && content[wordEnd] == ':' && !anonColonFollows(content, wordEnd):
		line.Label = &Item{Text: word, Span: withFile(file, lineStart, source.Span{Start: idx(pos), End: idx(wordEnd)})}
		cursor = wordEnd + 1
	case word != "":
		line.Command = &Item{Text: word, Span: withFile(file, lineStart, source.Span{Start: idx(pos), End: idx(wordEnd)})}
		cursor = wordEnd
	case pos < len(content) && content[pos] == ':' && emptyLabelFollows(content, pos):
		line.Label = &Item{Text: "", Span: withFile(file, lineStart, source.Span{Start: idx(pos), End: idx(pos + 1)})}
		cursor = pos + 1
	}

	if line.Command == nil {
		cmdPos := skipSpaces(content, cursor)
		cmdWord, cmdEnd := scanWord(content, cmdPos)
		if cmdWord != "" {
			line.Command = &Item{Text: cmdWord, Span: withFile(file, lineStart, source.Span{Start: idx(cmdPos), End: idx(cmdEnd)})}
			cursor = cmdEnd
		} else {
			cursor = cmdPos
		}
	}

	argsStart := skipSpaces(content, cursor)
	args := strings.TrimRight(content[argsStart:], " \t\r")
	if args != "" {
		line.Args = &Item{Text: args, Span: withFile(file, lineStart, source.Span{Start: idx(argsStart), End: idx(argsStart + len(args))})}
	}

	return line
}

func idx(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		return 0
	}
	return v
}

func withFile(file source.FileID, lineStart uint32, span source.Span) source.Span {
	return source.Span{File: file, Start: lineStart + span.Start, End: lineStart + span.End}
}

// splitComment locates the first ';' outside a string or character literal
// and returns the content before it and the comment item (if any), with
// offsets relative to the start of text.
func splitComment(text string) (string, *Item) {
	inString := false
	inChar := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' && !inChar:
			inString = !inString
		case c == '\'' && !inString:
			inChar = !inChar
		case c == ';' && !inString && !inChar:
			return text[:i], &Item{Text: text[i:], Span: source.Span{Start: idx(i), End: idx(len(text))}}
		}
	}
	return text, nil
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanWord returns the identifier-like word starting at i and its end offset.
func scanWord(s string, i int) (string, int) {
	start := i
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[start:i], i
}

// anonColonFollows reports whether the colon at idx is immediately followed
// by a character that turns it into an anonymous-label construct rather
// than a plain label terminator.
func anonColonFollows(s string, idx int) bool {
	if idx+1 >= len(s) {
		return false
	}
	switch s[idx+1] {
	case ':', '<', '>', '+', '-':
		return true
	default:
		return false
	}
}

// emptyLabelFollows reports whether the bare ':' at idx is a standalone
// empty-label definition: not followed by another anonymous-reference
// character, i.e. immediately followed by whitespace, end of line, or a
// comment.
func emptyLabelFollows(s string, idx int) bool {
	if idx+1 >= len(s) {
		return true
	}
	switch s[idx+1] {
	case ' ', '\t', '\r', ';':
		return true
	default:
		return false
	}
}
