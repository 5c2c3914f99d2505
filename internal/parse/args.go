package parse

import (
	"strings"

	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// parseArgs splits the text after a call name into arguments. Only simple
// literals are interpreted: quoted strings and symbols get a normalized
// value, so `'x'` and `"x"` compare equal during matching. Everything else
// (hashes, version lists, expressions) stays a raw fragment that compares
// by exact text only.
func parseArgs(rest string) []statement.Argument {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	// Tolerate the parenthesized call form, e.g. `appraise("unlocked")`.
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}

	var args []statement.Argument
	for _, piece := range splitTopLevel(rest) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		args = append(args, parseArg(piece))
	}
	return args
}

func parseArg(piece string) statement.Argument {
	if len(piece) >= 2 && (piece[0] == '"' || piece[0] == '\'') {
		if inner, ok := quotedValue(piece); ok {
			return statement.Argument{Value: inner, Literal: true}
		}
	}
	if symbolRe.MatchString(piece) {
		return statement.Argument{Value: piece[1:], Literal: true}
	}
	return statement.Argument{Value: piece}
}

// quotedValue extracts the contents of a leading quoted string, ignoring any
// trailing text such as an inline comment. Escaped quotes stay verbatim.
func quotedValue(piece string) (string, bool) {
	quote := piece[0]
	for i := 1; i < len(piece); i++ {
		if piece[i] == '\\' {
			i++
			continue
		}
		if piece[i] == quote {
			return piece[1:i], true
		}
	}
	return "", false
}

// stripInlineComment returns the code portion of a line, cutting a trailing
// comment that starts outside any quoted string. The comment text itself is
// kept by the caller via the raw line.
func stripInlineComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '#':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

// splitTopLevel splits on commas outside quotes, brackets, braces and
// parentheses.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		case '#':
			// inline comment: the rest belongs to the final fragment
			i = len(s)
		}
	}
	parts = append(parts, s[start:])
	return parts
}
