// Package diagnostic records structured, non-fatal observations made while
// merging: dropped duplicate statements, deduplicated comment blocks,
// template statements injected into the destination. The merge contract has
// no error path, so everything here is informational; notices never change
// the merged text.
package diagnostic

import (
	"fmt"
	"strings"
)

// Stable notice codes.
const (
	CodeDuplicateStatement = "duplicate_statement"
	CodeDuplicateComment   = "duplicate_comment_block"
	CodeDuplicateMagic     = "duplicate_magic_comment"
	CodeTemplateAppended   = "template_appended"
	CodeBlockUnion         = "block_union"
)

// Notice is a single observation.
type Notice struct {
	// Code is a stable identifier for the kind of observation.
	Code string
	// Message is the human-readable description.
	Message string
	// Detail identifies the statement signature or comment excerpt involved.
	Detail string
}

func (n Notice) String() string {
	if n.Detail == "" {
		return fmt.Sprintf("%s: %s", n.Code, n.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", n.Code, n.Message, n.Detail)
}

// Notices accumulates observations during one merge. The zero value is
// ready to use. A nil *Notices discards everything, so callers that do not
// care about reporting can pass nil throughout.
type Notices struct {
	Items []Notice
}

// Add records one notice.
func (ns *Notices) Add(code, message, detail string) {
	if ns == nil {
		return
	}
	ns.Items = append(ns.Items, Notice{Code: code, Message: message, Detail: detail})
}

// Len returns the number of recorded notices.
func (ns *Notices) Len() int {
	if ns == nil {
		return 0
	}
	return len(ns.Items)
}

// String renders all notices one per line.
func (ns *Notices) String() string {
	if ns == nil || len(ns.Items) == 0 {
		return ""
	}
	lines := make([]string, len(ns.Items))
	for i, n := range ns.Items {
		lines[i] = n.String()
	}
	return strings.Join(lines, "\n")
}
