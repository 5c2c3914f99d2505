// Package task loads the .kettle-merge.yml task file driving the CLI: a
// list of template -> destination pairs with per-path merge strategies.
// This is the only configuration surface of the tool; the merge core itself
// is configured purely through its function arguments.
package task

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kettle-rb/kettle-merge/merge"
)

// DefaultFileName is the task file the CLI looks for in the project root.
const DefaultFileName = ".kettle-merge.yml"

// File is the root of a task file.
type File struct {
	// Version of the task schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Defaults apply to every task that leaves the field unset.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Tasks lists the files to template, in execution order.
	Tasks []Task `yaml:"tasks"`
}

// Defaults holds fallback settings for tasks.
type Defaults struct {
	// Strategy is the merge strategy used when a task names none.
	Strategy string `yaml:"strategy,omitempty"`
}

// Task is one template -> destination pairing.
type Task struct {
	// Path is the destination file, relative to the project root. It also
	// selects the merge dialect (Appraisals vs. generic Gemfile rules).
	Path string `yaml:"path"`

	// Template is the template file, relative to the template root.
	Template string `yaml:"template"`

	// Strategy overrides the default strategy for this task.
	Strategy string `yaml:"strategy,omitempty"`
}

// LoadFile loads and parses a task file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML data into a File and validates it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse task YAML: %w", err)
	}
	applyDefaults(&f)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}
	if f.Defaults.Strategy == "" {
		f.Defaults.Strategy = merge.StrategySkip.String()
	}
	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.Template == "" {
			t.Template = t.Path
		}
	}
}

// Validate checks the task file structurally. All problems are reported at
// once as a joined error.
func (f *File) Validate() error {
	var errs []error

	if _, err := merge.ParseStrategy(f.Defaults.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	if len(f.Tasks) == 0 {
		errs = append(errs, errors.New("task file declares no tasks"))
	}

	seen := map[string]bool{}
	for i, t := range f.Tasks {
		if t.Path == "" {
			errs = append(errs, fmt.Errorf("task %d: path is required", i))
			continue
		}
		if seen[t.Path] {
			errs = append(errs, fmt.Errorf("task %d: duplicate path %q", i, t.Path))
		}
		seen[t.Path] = true
		if t.Strategy != "" {
			if _, err := merge.ParseStrategy(t.Strategy); err != nil {
				errs = append(errs, fmt.Errorf("task %d (%s): %w", i, t.Path, err))
			}
		}
	}

	return errors.Join(errs...)
}

// EffectiveStrategy resolves the strategy for a task, falling back to the
// file defaults. Validate has already checked both spellings.
func (f *File) EffectiveStrategy(t Task) merge.Strategy {
	name := t.Strategy
	if name == "" {
		name = f.Defaults.Strategy
	}
	s, err := merge.ParseStrategy(name)
	if err != nil {
		return merge.StrategySkip
	}
	return s
}
