// Package statement models the parsed form of Gemfile- and Appraisals-style
// files: an ordered sequence of declarations, each owning the comment lines
// directly above it. Statements are immutable value objects; merge operations
// build new instances instead of editing trees in place, so the template and
// destination trees never alias each other.
package statement

import "strings"

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind identifies what a parsed statement represents.
type Kind int

const (
	_ Kind = iota // zero value reserved as invalid

	// KindCall is a plain method call, e.g. `gem "rake"`.
	KindCall
	// KindBlock is a call followed by a do...end body, e.g. `appraise "x" do`.
	KindBlock
	// KindCommentGroup is a standalone comment block not owned by a statement.
	KindCommentGroup
	// KindMagicComment is a single recognized magic comment line.
	KindMagicComment
	// KindFreezeBlock is the atomic freeze-reminder unit: header comment,
	// freeze marker, body, unfreeze marker.
	KindFreezeBlock
	// KindShebang is a `#!` interpreter line, always first in the file.
	KindShebang
	// KindOpaque is unrecognized text carried through verbatim.
	KindOpaque
)

// Statement is one parsed declaration plus the comments it owns.
type Statement struct {
	Kind Kind

	// CallName is the method name for KindCall and KindBlock.
	CallName string

	// Args holds the parsed arguments for KindCall and KindBlock.
	Args []Argument

	// Raw is the statement's own source line (the call line, or the block
	// header line without its body), preserved verbatim so argument
	// formatting survives a round trip.
	Raw string

	// Lines holds the raw text of comment groups, magic comments, freeze
	// blocks, shebang lines and opaque statements.
	Lines []string

	// LeadingComments are the comment lines directly above the statement
	// with no blank line in between. They are owned exclusively by this
	// statement and are never deduplicated against other statements'
	// leading comments.
	LeadingComments []string

	// Body holds the nested statements of a KindBlock.
	Body []*Statement

	// BlankAbove records whether a blank line separated this statement (or
	// its leading comment run) from the preceding content in the source.
	BlankAbove bool
}

// Argument is a single call argument. Literal arguments (quoted strings and
// symbols) carry their normalized value so `'x'` and `"x"` compare equal;
// anything else keeps its raw fragment text and compares by exact text only.
type Argument struct {
	Value   string
	Literal bool
}

// Signature identifies "the same" declaration across template and
// destination: the call name plus the normalized primary argument. For
// non-call statements the signature is the exact statement text, so opaque
// fragments match only themselves.
type Signature struct {
	Call    string
	Primary string
}

// Signature derives the matching key for the statement.
func (s *Statement) Signature() Signature {
	switch s.Kind {
	case KindCall, KindBlock:
		sig := Signature{Call: s.CallName}
		if len(s.Args) > 0 {
			sig.Primary = strings.TrimSpace(s.Args[0].Value)
		}
		return sig
	default:
		return Signature{Call: strings.Join(s.Lines, "\n")}
	}
}

// Matchable reports whether the statement participates in signature
// matching. Comment-like statements are handled by the file-level
// deduplication pass instead.
func (s *Statement) Matchable() bool {
	switch s.Kind {
	case KindCall, KindBlock, KindOpaque:
		return true
	default:
		return false
	}
}

// FileLevelComment reports whether the statement is a comment block subject
// to file-level deduplication.
func (s *Statement) FileLevelComment() bool {
	return s.Kind == KindCommentGroup || s.Kind == KindFreezeBlock
}

// CommentKey returns the dedup key for file-level comment blocks: the block
// text with trailing whitespace trimmed per line. No other normalization is
// applied.
func (s *Statement) CommentKey() string {
	trimmed := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		trimmed[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(trimmed, "\n")
}

// Clone returns a deep copy of the statement. Merged output is always built
// from clones so the input trees stay untouched.
func (s *Statement) Clone() *Statement {
	c := *s
	c.Args = append([]Argument(nil), s.Args...)
	c.Lines = append([]string(nil), s.Lines...)
	c.LeadingComments = append([]string(nil), s.LeadingComments...)
	if s.Body != nil {
		c.Body = make([]*Statement, len(s.Body))
		for i, child := range s.Body {
			c.Body[i] = child.Clone()
		}
	}
	return &c
}

// PrimaryArg returns the normalized first argument, or "" when absent.
func (s *Statement) PrimaryArg() string {
	if len(s.Args) == 0 {
		return ""
	}
	return strings.TrimSpace(s.Args[0].Value)
}
