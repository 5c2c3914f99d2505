// Package parse implements the lightweight line parser for Gemfile- and
// Appraisals-style files. The grammar is deliberately constrained: method
// calls with simple literal arguments, do...end blocks, comments, magic
// comments and freeze-reminder blocks. Anything outside the grammar is
// carried through as an opaque statement instead of failing the parse.
package parse

import (
	"regexp"
	"strings"

	"github.com/kettle-rb/kettle-merge/internal/statement"
)

const (
	freezeMark   = "kettle-dev:freeze"
	unfreezeMark = "kettle-dev:unfreeze"
)

// magicPrefixes is the fixed set of recognized magic comment directives.
var magicPrefixes = []string{
	"# frozen_string_literal:",
	"# coding:",
	"# encoding:",
}

var (
	callRe   = regexp.MustCompile(`^([a-z_][A-Za-z0-9_]*[!?]?)([\s(].*)?$`)
	doTailRe = regexp.MustCompile(`\bdo(\s*\|[^|]*\|\s*)?$`)
	symbolRe = regexp.MustCompile(`^:[A-Za-z_][A-Za-z0-9_]*[!?]?$`)
)

// reservedWords are Ruby keywords that would otherwise look like call names.
// Lines starting with one of these are outside the supported grammar and
// pass through verbatim.
var reservedWords = map[string]bool{
	"if": true, "unless": true, "case": true, "while": true, "until": true,
	"begin": true, "def": true, "class": true, "module": true,
	"end": true, "else": true, "elsif": true, "when": true, "then": true,
	"rescue": true, "ensure": true, "return": true, "next": true,
	"break": true, "do": true, "yield": true,
}

// endOpeners are keywords that open an implicit end-terminated scope when
// they start a line. They matter only for block-depth tracking.
var endOpeners = map[string]bool{
	"if": true, "unless": true, "case": true, "while": true, "until": true,
	"begin": true, "def": true, "class": true, "module": true,
}

// Parse converts raw text into an ordered statement sequence. Parsing never
// fails: unrecognized constructs come back as opaque statements.
func Parse(text string) []*statement.Statement {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	p := &parser{lines: lines}
	return p.parseSequence(true)
}

type parser struct {
	lines []string
	pos   int
}

// parseSequence consumes statements until the line slice is exhausted.
// topLevel enables shebang and magic-comment recognition; both are file
// preamble constructs and never occur inside block bodies.
func (p *parser) parseSequence(topLevel bool) []*statement.Statement {
	var (
		out      []*statement.Statement
		comments []string
		blank    bool // blank line seen since the last emitted statement
		runBlank bool // blank state when the current comment run began
	)
	preamble := topLevel

	// A blank line detaches the pending comment run from any following
	// statement, turning it into a standalone file-level comment group.
	flushComments := func() {
		if len(comments) == 0 {
			return
		}
		out = append(out, &statement.Statement{
			Kind:       statement.KindCommentGroup,
			Lines:      comments,
			BlankAbove: runBlank,
		})
		comments = nil
	}

	for p.pos < len(p.lines) {
		trimmed := strings.TrimSpace(p.lines[p.pos])

		if trimmed == "" {
			flushComments()
			blank = true
			p.pos++
			continue
		}

		if topLevel && p.pos == 0 && strings.HasPrefix(trimmed, "#!") {
			out = append(out, &statement.Statement{
				Kind:  statement.KindShebang,
				Lines: []string{trimmed},
			})
			p.pos++
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			if strings.Contains(trimmed, freezeMark) && !strings.Contains(trimmed, unfreezeMark) {
				// The comment line directly above the marker is the
				// block header; everything before it is unrelated.
				header := ""
				blankAbove := blank
				if n := len(comments); n > 0 {
					header = comments[n-1]
					comments = comments[:n-1]
					blankAbove = runBlank
				}
				flushComments()
				out = append(out, p.scanFreezeBlock(header, trimmed, blankAbove))
				blank = false
				continue
			}
			if preamble && isMagic(trimmed) {
				flushComments()
				out = append(out, &statement.Statement{
					Kind:       statement.KindMagicComment,
					Lines:      []string{trimmed},
					BlankAbove: blank,
				})
				blank = false
				p.pos++
				continue
			}
			if len(comments) == 0 {
				runBlank = blank
				blank = false
			}
			comments = append(comments, trimmed)
			p.pos++
			continue
		}

		preamble = false
		st := p.parseStatement(trimmed)
		st.LeadingComments = comments
		if len(comments) > 0 {
			st.BlankAbove = runBlank
		} else {
			st.BlankAbove = blank
		}
		comments = nil
		blank = false
		out = append(out, st)
	}

	flushComments()
	return out
}

// scanFreezeBlock consumes lines from the freeze marker through the
// unfreeze marker as one atomic statement. A missing unfreeze marker
// swallows the rest of the input; the block stays intact either way.
func (p *parser) scanFreezeBlock(header, marker string, blankAbove bool) *statement.Statement {
	var lines []string
	if header != "" {
		lines = append(lines, header)
	}
	lines = append(lines, marker)
	p.pos++
	for p.pos < len(p.lines) {
		l := strings.TrimSpace(p.lines[p.pos])
		lines = append(lines, l)
		p.pos++
		if strings.Contains(l, unfreezeMark) {
			break
		}
	}
	return &statement.Statement{
		Kind:       statement.KindFreezeBlock,
		Lines:      lines,
		BlankAbove: blankAbove,
	}
}

// parseStatement consumes one call, block or opaque statement starting at
// the current line. The caller has already trimmed the line. Structural
// decisions are made on the comment-stripped code portion so an inline
// comment ending in "do" cannot fake a block header and a real header
// carrying a comment is still one.
func (p *parser) parseStatement(trimmed string) *statement.Statement {
	code := stripInlineComment(trimmed)
	m := callRe.FindStringSubmatch(code)
	if m == nil || reservedWords[m[1]] {
		raw := strings.TrimRight(p.lines[p.pos], " \t")
		p.pos++
		return &statement.Statement{
			Kind:  statement.KindOpaque,
			Lines: []string{raw},
		}
	}

	name := m[1]
	rest := strings.TrimSpace(m[2])

	if doTailRe.MatchString(code) {
		p.pos++
		body := p.collectBlockBody()
		sub := &parser{lines: body}
		argText := strings.TrimSpace(doTailRe.ReplaceAllString(rest, ""))
		return &statement.Statement{
			Kind:     statement.KindBlock,
			CallName: name,
			Args:     parseArgs(argText),
			Raw:      trimmed,
			Body:     sub.parseSequence(false),
		}
	}

	p.pos++
	return &statement.Statement{
		Kind:     statement.KindCall,
		CallName: name,
		Args:     parseArgs(rest),
		Raw:      trimmed,
	}
}

// collectBlockBody gathers the lines of a do...end body, tracking nested
// scopes so inner blocks keep their own end. An unterminated block consumes
// the rest of the input rather than failing.
func (p *parser) collectBlockBody() []string {
	depth := 1
	var body []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "#") {
			switch {
			case opensScope(stripInlineComment(t)):
				depth++
			case t == "end":
				depth--
				if depth == 0 {
					p.pos++
					return body
				}
			}
		}
		body = append(body, line)
		p.pos++
	}
	return body
}

// opensScope reports whether a line's comment-stripped code opens an
// end-terminated scope: a trailing `do` (with optional block parameters) or
// a leading control-flow keyword.
func opensScope(code string) bool {
	if doTailRe.MatchString(code) {
		return true
	}
	word := code
	if i := strings.IndexAny(code, " \t("); i >= 0 {
		word = code[:i]
	}
	return endOpeners[word]
}

func isMagic(trimmed string) bool {
	for _, prefix := range magicPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
