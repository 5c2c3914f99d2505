package engine

import (
	"github.com/kettle-rb/kettle-merge/internal/dialect"
	"github.com/kettle-rb/kettle-merge/internal/diagnostic"
	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// mergeSeqs implements the merge strategy's statement walk. It is also the
// recursion step for block bodies: destination statements first in original
// order, template-only statements appended at the end.
func mergeSeqs(tpl, dst []*statement.Statement, dl dialect.Dialect, notes *diagnostic.Notices) []*statement.Statement {
	var out []*statement.Statement
	used := make([]bool, len(tpl))
	emitted := map[statement.Signature]bool{}

	for _, ds := range dst {
		if !ds.Matchable() {
			out = append(out, ds.Clone())
			continue
		}
		sig := ds.Signature()
		// Opaque statements are exempt from duplicate collapsing: two
		// identical pass-through lines (say, a bare `end`) are not the
		// same declaration twice.
		if ds.Kind != statement.KindOpaque && emitted[sig] {
			notes.Add(diagnostic.CodeDuplicateStatement, "dropped duplicate destination statement", sigString(sig))
			continue
		}
		ti := findMatch(tpl, used, sig)
		if ti >= 0 {
			used[ti] = true
			out = append(out, mergeOne(tpl[ti], ds, dl, notes))
		} else {
			out = append(out, ds.Clone())
		}
		if ds.Kind != statement.KindOpaque {
			emitted[sig] = true
		}
	}

	return appendRemaining(out, tpl, used, dl, true, notes)
}

// appendRemaining adds unmatched template statements to the end of out,
// preserving template order and skipping signatures already present. With
// mergeBodies set (the merge strategy), appended union blocks run their own
// body merge against nothing, so internal duplicates collapse the same way
// they would have against a destination.
func appendRemaining(out, tpl []*statement.Statement, used []bool, dl dialect.Dialect, mergeBodies bool, notes *diagnostic.Notices) []*statement.Statement {
	emitted := map[statement.Signature]bool{}
	opaque := map[string]bool{}
	for _, s := range out {
		if !s.Matchable() {
			continue
		}
		if s.Kind == statement.KindOpaque {
			opaque[s.Signature().Call] = true
		} else {
			emitted[s.Signature()] = true
		}
	}

	for i, ts := range tpl {
		if used[i] {
			continue
		}
		if !ts.Matchable() {
			out = append(out, ts.Clone())
			continue
		}
		sig := ts.Signature()
		if ts.Kind == statement.KindOpaque {
			if opaque[sig.Call] {
				continue
			}
			opaque[sig.Call] = true
			out = append(out, ts.Clone())
			continue
		}
		if emitted[sig] {
			notes.Add(diagnostic.CodeDuplicateStatement, "dropped duplicate template statement", sigString(sig))
			continue
		}
		emitted[sig] = true
		c := ts.Clone()
		if mergeBodies && c.Kind == statement.KindBlock && dl.UnionBlock(c.CallName) {
			c.Body = mergeSeqs(c.Body, nil, dl, notes)
		}
		out = append(out, c)
		notes.Add(diagnostic.CodeTemplateAppended, "appended template statement", sigString(sig))
	}
	return out
}

// findMatch returns the index of the first unused template statement with
// the given signature, or -1. First occurrence wins on ties.
func findMatch(tpl []*statement.Statement, used []bool, sig statement.Signature) int {
	for i, ts := range tpl {
		if used[i] || !ts.Matchable() {
			continue
		}
		if ts.Signature() == sig {
			return i
		}
	}
	return -1
}

// mergeOne combines one matched template/destination pair. The template's
// own line wins (it is the source of truth for argument text); comments
// follow the header-combination rule; block bodies union recursively when
// the dialect marks the call as body-merged, otherwise the template body
// replaces the destination body wholesale.
func mergeOne(t, d *statement.Statement, dl dialect.Dialect, notes *diagnostic.Notices) *statement.Statement {
	out := t.Clone()
	out.BlankAbove = d.BlankAbove
	out.LeadingComments = combineComments(t.LeadingComments, d.LeadingComments)
	if t.Kind == statement.KindBlock && d.Kind == statement.KindBlock && dl.UnionBlock(t.CallName) {
		out.Body = mergeSeqs(t.Body, d.Body, dl, notes)
		notes.Add(diagnostic.CodeBlockUnion, "merged block bodies", sigString(t.Signature()))
	}
	return out
}

// combineComments merges two leading-comment runs. When only one side has a
// header it survives alone; when both do, the template's lines come first
// and the destination's follow, with exact duplicate lines collapsed so a
// shared magic comment or boilerplate line appears once.
func combineComments(tpl, dst []string) []string {
	if len(tpl) == 0 {
		return append([]string(nil), dst...)
	}
	if len(dst) == 0 {
		return append([]string(nil), tpl...)
	}
	out := append([]string(nil), tpl...)
	seen := map[string]bool{}
	for _, line := range tpl {
		seen[trimRight(line)] = true
	}
	for _, line := range dst {
		if seen[trimRight(line)] {
			continue
		}
		seen[trimRight(line)] = true
		out = append(out, line)
	}
	return out
}
