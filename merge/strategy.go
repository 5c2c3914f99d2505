// Package merge is the public entry point of kettle-merge: a deterministic,
// idempotent structural merge over Gemfile- and Appraisals-style files.
// Apply is a pure function of its inputs; it performs no I/O, never fails,
// and may be called concurrently from any number of goroutines.
package merge

import (
	"fmt"
	"strings"
)

// Strategy selects how template content is folded into a destination file.
type Strategy int

const (
	_ Strategy = iota // zero value reserved as invalid

	// StrategySkip preserves existing destination content as-is, applying
	// only file-level comment normalization. An empty destination takes
	// the template content instead.
	StrategySkip
	// StrategyMerge folds the template into the destination: matched
	// statements combine, block bodies union, template-only statements
	// are appended, destination duplicates collapse to the first.
	StrategyMerge
	// StrategyReplace substitutes the template's version for every
	// destination statement with a template counterpart.
	StrategyReplace
	// StrategyAppend adds deduplicated source statements after the
	// existing destination content.
	StrategyAppend
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategySkip:
		return "skip"
	case StrategyMerge:
		return "merge"
	case StrategyReplace:
		return "replace"
	case StrategyAppend:
		return "append"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "skip":
		return StrategySkip, nil
	case "merge":
		return StrategyMerge, nil
	case "replace":
		return StrategyReplace, nil
	case "append":
		return StrategyAppend, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q", name)
	}
}
