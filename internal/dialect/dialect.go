// Package dialect selects syntax-specific merge rules from a file path.
// The path never triggers I/O; it only decides whether Appraisals-aware
// block semantics apply.
package dialect

import (
	"path"
	"path/filepath"
)

// Dialect names a family of merge rules.
type Dialect int

const (
	// Gemfile is the generic dialect: statement-level merging with
	// body-union merging for the standard Bundler block calls.
	Gemfile Dialect = iota
	// Appraisals activates appraise-block semantics: `appraise "x" do`
	// blocks merge by union of their bodies, with `eval_gemfile` as the
	// mergeable call inside them.
	Appraisals
)

// String returns the dialect name.
func (d Dialect) String() string {
	if d == Appraisals {
		return "appraisals"
	}
	return "gemfile"
}

// unionBlocks lists, per dialect, the block calls whose bodies are merged by
// union when a matching block exists on both sides. Blocks outside the set
// are replaced wholesale by the template's version.
var unionBlocks = map[Dialect]map[string]bool{
	Gemfile: {
		"group":      true,
		"platforms":  true,
		"platform":   true,
		"source":     true,
		"install_if": true,
	},
	Appraisals: {
		"appraise": true,
	},
}

// ForPath picks the dialect for a relative file path. A file named
// `Appraisals` or matching `gemfiles/modular/*.gemfile` gets Appraisals
// semantics; everything else gets generic Gemfile rules.
func ForPath(p string) Dialect {
	slashed := filepath.ToSlash(p)
	if path.Base(slashed) == "Appraisals" {
		return Appraisals
	}
	if ok, _ := path.Match("gemfiles/modular/*.gemfile", slashed); ok {
		return Appraisals
	}
	if ok, _ := path.Match("*/gemfiles/modular/*.gemfile", slashed); ok {
		return Appraisals
	}
	return Gemfile
}

// UnionBlock reports whether a matched block with the given call name merges
// by body union under this dialect.
func (d Dialect) UnionBlock(call string) bool {
	return unionBlocks[d][call]
}
