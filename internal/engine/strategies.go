package engine

import (
	"github.com/kettle-rb/kettle-merge/internal/dialect"
	"github.com/kettle-rb/kettle-merge/internal/diagnostic"
	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// Skip preserves the content essentially as-is, normalizing only file-level
// comments: the magic block is deduplicated and hoisted, duplicate
// standalone comment blocks collapse to the first occurrence. Individual
// statements are never deduplicated or reordered here.
func Skip(content []*statement.Statement, notes *diagnostic.Notices) []*statement.Statement {
	doc := split(content, notes)
	doc.rest = dedupComments(doc.rest, notes)
	return doc.compose()
}

// Merge folds a template sequence into a destination sequence. Matched
// statements combine per mergeOne; destination-only statements keep their
// position; template-only statements are appended at the end in template
// order. Destination duplicates of an already-emitted signature are dropped
// together with their leading comments.
func Merge(tpl, dst []*statement.Statement, dl dialect.Dialect, notes *diagnostic.Notices) []*statement.Statement {
	tdoc := split(tpl, notes)
	ddoc := split(dst, notes)
	doc := document{
		shebang: pickShebang(tdoc.shebang, ddoc.shebang),
		magic:   pickMagic(tdoc.magic, ddoc.magic),
		rest:    mergeSeqs(tdoc.rest, ddoc.rest, dl, notes),
	}
	doc.rest = dedupComments(doc.rest, notes)
	return doc.compose()
}

// Replace substitutes the template's version for every destination
// statement that has a template counterpart, comments included.
// Destination-only statements are preserved unchanged in position;
// template-only statements are appended at the end.
func Replace(tpl, dst []*statement.Statement, dl dialect.Dialect, notes *diagnostic.Notices) []*statement.Statement {
	tdoc := split(tpl, notes)
	ddoc := split(dst, notes)
	doc := document{
		shebang: pickShebang(tdoc.shebang, ddoc.shebang),
		magic:   pickMagic(tdoc.magic, ddoc.magic),
	}

	used := make([]bool, len(tdoc.rest))
	for _, ds := range ddoc.rest {
		if !ds.Matchable() {
			doc.rest = append(doc.rest, ds.Clone())
			continue
		}
		ti := findMatch(tdoc.rest, used, ds.Signature())
		if ti < 0 {
			doc.rest = append(doc.rest, ds.Clone())
			continue
		}
		used[ti] = true
		c := tdoc.rest[ti].Clone()
		c.BlankAbove = ds.BlankAbove
		doc.rest = append(doc.rest, c)
	}
	doc.rest = appendRemaining(doc.rest, tdoc.rest, used, dl, false, notes)
	doc.rest = dedupComments(doc.rest, notes)
	return doc.compose()
}

// Append treats src as new content added after the existing destination.
// The source is first deduplicated internally (same signature collapses to
// the first occurrence, dropping later duplicates' comments), then every
// source statement whose signature is not already present in the
// destination is appended. Destination statements pass through untouched.
func Append(src, dst []*statement.Statement, notes *diagnostic.Notices) []*statement.Statement {
	sdoc := split(src, notes)
	ddoc := split(dst, notes)
	doc := document{
		shebang: pickShebang(sdoc.shebang, ddoc.shebang),
		magic:   pickMagic(sdoc.magic, ddoc.magic),
	}

	present := map[statement.Signature]bool{}
	for _, ds := range ddoc.rest {
		doc.rest = append(doc.rest, ds.Clone())
		if ds.Matchable() {
			present[ds.Signature()] = true
		}
	}

	srcSeen := map[statement.Signature]bool{}
	for _, ss := range sdoc.rest {
		if !ss.Matchable() {
			doc.rest = append(doc.rest, ss.Clone())
			continue
		}
		sig := ss.Signature()
		if srcSeen[sig] {
			notes.Add(diagnostic.CodeDuplicateStatement, "dropped duplicate source statement", sigString(sig))
			continue
		}
		srcSeen[sig] = true
		if present[sig] {
			continue
		}
		doc.rest = append(doc.rest, ss.Clone())
		notes.Add(diagnostic.CodeTemplateAppended, "appended source statement", sigString(sig))
	}
	doc.rest = dedupComments(doc.rest, notes)
	return doc.compose()
}
