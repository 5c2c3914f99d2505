// Package render serializes statement sequences back to text. Layout is
// canonical: shebang first, the magic-comment block next with exactly one
// blank line after it and none inside it, standalone comment blocks always
// followed by a blank line so they stay detached, block bodies indented two
// spaces. A final pass collapses blank-line runs and fixes the trailing
// newline.
package render

import (
	"strings"

	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// Render serializes and normalizes a statement sequence.
func Render(stmts []*statement.Statement) string {
	var b strings.Builder
	writeSeq(&b, stmts, 0)
	return Normalize(b.String())
}

func writeSeq(b *strings.Builder, stmts []*statement.Statement, depth int) {
	var prev *statement.Statement
	for _, s := range stmts {
		if prev != nil && needBlank(prev, s) {
			b.WriteString("\n")
		}
		writeStatement(b, s, depth)
		prev = s
	}
}

// needBlank decides whether one blank line separates prev from cur. The
// magic block is contiguous internally and always followed by a blank;
// standalone comment blocks are always followed by a blank so they do not
// reattach to the next statement on a reparse.
func needBlank(prev, cur *statement.Statement) bool {
	switch {
	case prev.Kind == statement.KindMagicComment && cur.Kind == statement.KindMagicComment:
		return false
	case prev.Kind == statement.KindMagicComment:
		return true
	case prev.Kind == statement.KindCommentGroup || prev.Kind == statement.KindFreezeBlock:
		return true
	case prev.Kind == statement.KindShebang:
		return cur.Kind != statement.KindMagicComment && cur.BlankAbove
	default:
		return cur.BlankAbove
	}
}

func writeStatement(b *strings.Builder, s *statement.Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range s.LeadingComments {
		b.WriteString(indent)
		b.WriteString(c)
		b.WriteString("\n")
	}
	switch s.Kind {
	case statement.KindCall:
		b.WriteString(indent)
		b.WriteString(s.Raw)
		b.WriteString("\n")
	case statement.KindBlock:
		b.WriteString(indent)
		b.WriteString(s.Raw)
		b.WriteString("\n")
		writeSeq(b, s.Body, depth+1)
		b.WriteString(indent)
		b.WriteString("end\n")
	case statement.KindOpaque:
		// Opaque lines keep their original leading whitespace; re-indenting
		// would reshape constructs the parser does not understand.
		for _, line := range s.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	default:
		for _, line := range s.Lines {
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

// Normalize enforces the global blank-line invariants on rendered text:
// no leading blank lines, no runs of two or more blank lines, no trailing
// whitespace per line, and exactly one trailing newline. Empty input stays
// the empty string.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blankRun := true // swallow leading blanks
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			if blankRun {
				continue
			}
			blankRun = true
			out = append(out, "")
			continue
		}
		blankRun = false
		out = append(out, strings.TrimRight(ln, " \t"))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
