package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kettle-rb/kettle-merge/merge"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
defaults:
  strategy: merge
tasks:
  - path: Gemfile
    template: Gemfile
  - path: Appraisals
    template: Appraisals
    strategy: replace
  - path: gemfiles/modular/style.gemfile
    strategy: skip
`
	f, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, "merge", f.Defaults.Strategy)
	require.Len(t, f.Tasks, 3)

	assert.Equal(t, merge.StrategyMerge, f.EffectiveStrategy(f.Tasks[0]))
	assert.Equal(t, merge.StrategyReplace, f.EffectiveStrategy(f.Tasks[1]))
	assert.Equal(t, merge.StrategySkip, f.EffectiveStrategy(f.Tasks[2]))

	// An omitted template defaults to the destination path.
	assert.Equal(t, "gemfiles/modular/style.gemfile", f.Tasks[2].Template)
}

func TestParseMinimal(t *testing.T) {
	f, err := Parse([]byte("tasks:\n  - path: Gemfile\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", f.Version)
	assert.Equal(t, merge.StrategySkip, f.EffectiveStrategy(f.Tasks[0]))
}

func TestParseRejectsUnknownStrategy(t *testing.T) {
	_, err := Parse([]byte("tasks:\n  - path: Gemfile\n    strategy: overwrite\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown merge strategy")
}

func TestParseRejectsMissingPathAndDuplicates(t *testing.T) {
	_, err := Parse([]byte("tasks:\n  - template: Gemfile\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")

	_, err = Parse([]byte("tasks:\n  - path: Gemfile\n  - path: Gemfile\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate path")
}

func TestParseRejectsEmptyTaskList(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tasks")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("tasks: [whoops"))
	require.Error(t, err)
}
