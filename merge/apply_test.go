package merge

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripleNewline = regexp.MustCompile(`\n\n\n`)

// checkInvariants asserts the global output invariants: no runs of two or
// more blank lines, exactly one trailing newline.
func checkInvariants(t *testing.T, out string) {
	t.Helper()
	if out == "" {
		return
	}
	assert.False(t, tripleNewline.MatchString(out), "output has a 2+ blank line run:\n%s", out)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestApplyIdempotence(t *testing.T) {
	src := `# frozen_string_literal: true

source "https://rubygems.org"

# Task automation.
gem "rake", "~> 13.0"

group :test do
  gem "rspec"
  gem "rspec"
end
`
	dest := `# frozen_string_literal: true

gem "rake", "~> 12.0"
gem "pry"

# Boilerplate header.

# Boilerplate header.

gem "pry"
`
	for _, strategy := range []Strategy{StrategySkip, StrategyMerge, StrategyReplace, StrategyAppend} {
		t.Run(strategy.String(), func(t *testing.T) {
			first := Apply(strategy, src, dest, "Gemfile")
			second := Apply(strategy, first, first, "Gemfile")
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("not a fixed point (-first +second):\n%s", diff)
			}
			checkInvariants(t, first)
		})
	}
}

func TestSkipIdempotenceOnEmptyDest(t *testing.T) {
	src := "# frozen_string_literal: true\n\n\n\ngem \"foo\"\n\n\ngem \"foo\"\n"
	first := Apply(StrategySkip, src, "", "Gemfile")
	second := Apply(StrategySkip, first, "", "Gemfile")
	assert.Equal(t, first, second)
	checkInvariants(t, first)
}

func TestSkipDedupsMagicComments(t *testing.T) {
	src := "# frozen_string_literal: true\n# frozen_string_literal: true\n# frozen_string_literal: true\n\ngem \"foo\"\n"
	out := Apply(StrategySkip, src, "", "Gemfile")
	assert.Equal(t, 1, strings.Count(out, "# frozen_string_literal: true"))
	checkInvariants(t, out)
}

func TestSkipPreservesPerStatementComments(t *testing.T) {
	src := `# This comment describes foo
gem "foo"

# This comment describes foo
gem "foo"
`
	out := Apply(StrategySkip, src, "", "Gemfile")
	// Two identical leading comments belong to two different statements:
	// both survive, and so do both gem calls.
	assert.Equal(t, 2, strings.Count(out, "# This comment describes foo"))
	assert.Equal(t, 2, strings.Count(out, `gem "foo"`))
	checkInvariants(t, out)
}

func TestMergeDedupsStatements(t *testing.T) {
	src := `# This is the first foo
gem "foo"

# This is the second foo
gem "foo"
`
	out := Apply(StrategyMerge, src, "", "Gemfile")
	assert.Equal(t, 1, strings.Count(out, `gem "foo"`))
	assert.Contains(t, out, "# This is the first foo")
	assert.NotContains(t, out, "# This is the second foo")
	checkInvariants(t, out)
}

func TestAppendDedupThenConcat(t *testing.T) {
	src := `# first foo
gem "foo"

# second foo
gem "foo"

gem "bar"
`
	dest := "gem \"baz\"\n"
	out := Apply(StrategyAppend, src, dest, "Gemfile")

	assert.Equal(t, 1, strings.Count(out, `gem "foo"`))
	assert.Equal(t, 1, strings.Count(out, `gem "bar"`))
	assert.Equal(t, 1, strings.Count(out, `gem "baz"`))
	assert.Contains(t, out, "# first foo")
	assert.NotContains(t, out, "# second foo")
	assert.Less(t, strings.Index(out, `gem "baz"`), strings.Index(out, `gem "foo"`))
	checkInvariants(t, out)
}

func TestAppraisalsBlockUnionMerge(t *testing.T) {
	template := `appraise "unlocked" do
  eval_gemfile "a.gemfile"
  eval_gemfile "b.gemfile"
end
`
	dest := `appraise "unlocked" do
  eval_gemfile "a.gemfile"
  eval_gemfile "custom.gemfile" # local override
end
`
	out := Merge(template, dest)

	assert.Contains(t, out, `eval_gemfile "a.gemfile"`)
	assert.Contains(t, out, `eval_gemfile "custom.gemfile" # local override`)
	assert.Contains(t, out, `eval_gemfile "b.gemfile"`)
	// The template-only line lands at the end of the block body.
	assert.Less(t, strings.Index(out, "custom.gemfile"), strings.Index(out, "b.gemfile"))
	assert.Less(t, strings.Index(out, "b.gemfile"), strings.Index(out, "end"))
	checkInvariants(t, out)

	// Re-merging the template into the merged output is a no-op.
	assert.Equal(t, out, Merge(template, out))
}

func TestMergeCommentedBlockHeaderKeepsDestinationBody(t *testing.T) {
	template := `appraise "unlocked" do # managed
  gem "benchmark-ips"
end
`
	dest := `appraise "unlocked" do
  eval_gemfile "a.gemfile"
end
`
	out := Merge(template, dest)

	// The inline comment on the template header must not demote the block
	// to a plain call: both bodies union, nothing from dest is lost.
	assert.Contains(t, out, `eval_gemfile "a.gemfile"`)
	assert.Contains(t, out, `gem "benchmark-ips"`)
	assert.Equal(t, 1, strings.Count(out, "appraise"))
	checkInvariants(t, out)
}

func TestSkipLeavesCallWithCommentedDoAlone(t *testing.T) {
	input := "gem \"rake\" # see the docs for what rake can do\ngem \"rspec\"\n"
	out := Apply(StrategySkip, "", input, "Gemfile")
	assert.Equal(t, input, out)
}

func TestApplyBlankLineInvariantHoldsEverywhere(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"gem \"a\"\n\n\n\n\ngem \"b\"",
		"# c\n\n\n\n# c\n\ngem \"a\"\n\n\n",
		"#!/usr/bin/env ruby\n# frozen_string_literal: true\ngem \"a\"\n",
	}
	for _, src := range inputs {
		for _, strategy := range []Strategy{StrategySkip, StrategyMerge, StrategyReplace, StrategyAppend} {
			checkInvariants(t, Apply(strategy, src, "gem \"z\"\n", "Gemfile"))
			checkInvariants(t, Apply(strategy, src, "", "Gemfile"))
		}
	}
}

func TestApplyReportNotices(t *testing.T) {
	src := "gem \"foo\"\ngem \"foo\"\n"
	out, notes := ApplyReport(StrategyMerge, src, "", "Gemfile")
	assert.Equal(t, 1, strings.Count(out, `gem "foo"`))
	require.NotEmpty(t, notes)
	var codes []string
	for _, n := range notes {
		codes = append(codes, n.Code)
	}
	assert.Contains(t, codes, "duplicate_statement")
}

func TestApplyTemplateHeaderWinsForMagic(t *testing.T) {
	src := "# frozen_string_literal: true\n\ngem \"a\"\n"
	dest := "# coding: utf-8\n\ngem \"a\"\n"
	out := Apply(StrategyMerge, src, dest, "Gemfile")
	assert.Contains(t, out, "# frozen_string_literal: true")
	assert.NotContains(t, out, "# coding: utf-8")
}

func TestApplyDestMagicSurvivesWhenTemplateHasNone(t *testing.T) {
	out := Apply(StrategyMerge, "gem \"a\"\n", "# coding: utf-8\n\ngem \"a\"\n", "Gemfile")
	assert.True(t, strings.HasPrefix(out, "# coding: utf-8\n"))
}

func TestApplyIsPureAndConcurrencySafe(t *testing.T) {
	src := "gem \"rake\"\n"
	dest := "gem \"pry\"\n"
	want := Apply(StrategyMerge, src, dest, "Gemfile")

	done := make(chan string, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- Apply(StrategyMerge, src, dest, "Gemfile")
		}()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{
		"skip":    StrategySkip,
		"merge":   StrategyMerge,
		"Replace": StrategyReplace,
		" append": StrategyAppend,
	} {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("overwrite")
	assert.Error(t, err)
}
