package merge

import (
	"github.com/kettle-rb/kettle-merge/internal/dialect"
	"github.com/kettle-rb/kettle-merge/internal/diagnostic"
	"github.com/kettle-rb/kettle-merge/internal/engine"
	"github.com/kettle-rb/kettle-merge/internal/parse"
	"github.com/kettle-rb/kettle-merge/internal/render"
	"github.com/kettle-rb/kettle-merge/internal/statement"
)

// Note is one non-fatal observation reported alongside merged text:
// a dropped duplicate, a deduplicated comment block, an appended template
// statement. Notes never influence the text result.
type Note struct {
	Code    string
	Message string
	Detail  string
}

// Apply merges template content (src) into existing file content (dest)
// under the given strategy and returns the fully rendered, normalized text.
// An empty dest means the destination file does not exist yet. The path is
// used only to pick dialect rules (Appraisals vs. generic Gemfile); no I/O
// happens here.
func Apply(strategy Strategy, src, dest, path string) string {
	text, _ := ApplyReport(strategy, src, dest, path)
	return text
}

// ApplyReport is Apply plus the notices collected while merging.
func ApplyReport(strategy Strategy, src, dest, path string) (string, []Note) {
	dl := dialect.ForPath(path)
	notes := &diagnostic.Notices{}

	merged := func() []*statement.Statement {
		switch strategy {
		case StrategyMerge:
			return engine.Merge(parse.Parse(src), parse.Parse(dest), dl, notes)
		case StrategyReplace:
			return engine.Replace(parse.Parse(src), parse.Parse(dest), dl, notes)
		case StrategyAppend:
			return engine.Append(parse.Parse(src), parse.Parse(dest), notes)
		default:
			// Skip, and the fallback for an unrecognized strategy value:
			// keep what exists, normalize file-level comments only.
			content := dest
			if content == "" {
				content = src
			}
			return engine.Skip(parse.Parse(content), notes)
		}
	}()

	return render.Render(merged), toNotes(notes)
}

// Merge is the Appraisals-specialized entry point used by the Appraisals
// templating path: merge-strategy semantics with appraise-block body union.
func Merge(template, dest string) string {
	return Apply(StrategyMerge, template, dest, "Appraisals")
}

func toNotes(ns *diagnostic.Notices) []Note {
	if ns.Len() == 0 {
		return nil
	}
	out := make([]Note, len(ns.Items))
	for i, n := range ns.Items {
		out[i] = Note{Code: n.Code, Message: n.Message, Detail: n.Detail}
	}
	return out
}
