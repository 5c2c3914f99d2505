// Package engine implements the strategy-driven merge over parsed statement
// sequences. All four strategies share the same file-level decomposition:
// shebang first, then the deduplicated magic-comment block, then everything
// else. The engine never fails; the worst case for ambiguous input is a
// statement passing through as opaque text.
package engine

import (
	"fmt"
	"strings"

	"github.com/kettle-rb/kettle-merge/internal/diagnostic"
	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// document is the file-level decomposition every strategy works from.
type document struct {
	shebang *statement.Statement
	magic   []*statement.Statement
	rest    []*statement.Statement
}

// split decomposes a statement sequence. Magic comment lines are
// deduplicated here, keeping the first occurrence in source order; later
// duplicates are reported and dropped.
func split(stmts []*statement.Statement, notes *diagnostic.Notices) document {
	var doc document
	seen := map[string]bool{}
	for _, s := range stmts {
		switch s.Kind {
		case statement.KindShebang:
			if doc.shebang == nil {
				doc.shebang = s
			}
		case statement.KindMagicComment:
			line := s.Lines[0]
			if seen[line] {
				notes.Add(diagnostic.CodeDuplicateMagic, "dropped duplicate magic comment", line)
				continue
			}
			seen[line] = true
			doc.magic = append(doc.magic, s)
		default:
			doc.rest = append(doc.rest, s)
		}
	}
	return doc
}

// compose reassembles the canonical file order.
func (d document) compose() []*statement.Statement {
	out := make([]*statement.Statement, 0, len(d.magic)+len(d.rest)+1)
	if d.shebang != nil {
		out = append(out, d.shebang)
	}
	out = append(out, d.magic...)
	return append(out, d.rest...)
}

// pickMagic applies header precedence: the template's magic block wins when
// present, otherwise the destination's survives.
func pickMagic(tpl, dst []*statement.Statement) []*statement.Statement {
	if len(tpl) > 0 {
		return tpl
	}
	return dst
}

func pickShebang(tpl, dst *statement.Statement) *statement.Statement {
	if tpl != nil {
		return tpl
	}
	return dst
}

// dedupComments removes duplicate file-level comment blocks (standalone
// comment groups and freeze-reminder blocks), first occurrence wins.
// Per-statement leading comments are deliberately untouched: they are owned
// by their statement even when byte-identical to another statement's.
func dedupComments(stmts []*statement.Statement, notes *diagnostic.Notices) []*statement.Statement {
	seen := map[string]bool{}
	out := stmts[:0:0]
	for _, s := range stmts {
		if s.FileLevelComment() {
			key := s.CommentKey()
			if seen[key] {
				notes.Add(diagnostic.CodeDuplicateComment, "dropped duplicate comment block", firstLine(s))
				continue
			}
			seen[key] = true
		}
		out = append(out, s)
	}
	return out
}

func firstLine(s *statement.Statement) string {
	if len(s.Lines) == 0 {
		return ""
	}
	return s.Lines[0]
}

func trimRight(line string) string {
	return strings.TrimRight(line, " \t")
}

func sigString(sig statement.Signature) string {
	if sig.Primary == "" {
		return sig.Call
	}
	return fmt.Sprintf("%s %q", sig.Call, sig.Primary)
}
