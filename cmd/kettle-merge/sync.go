package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kettle-rb/kettle-merge/internal/task"
	"github.com/kettle-rb/kettle-merge/merge"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run every task declared in the task file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync()
	},
}

// runSync loads the task file and applies every task in order. A task only
// writes its destination when the merged text differs from what is already
// on disk, so repeated syncs are no-ops.
func runSync() error {
	cfg := configPath
	if cfg == "" {
		cfg = filepath.Join(projectRoot, task.DefaultFileName)
	}
	f, err := task.LoadFile(cfg)
	if err != nil {
		return err
	}

	for _, t := range f.Tasks {
		if err := runTask(f, t); err != nil {
			return fmt.Errorf("task %s: %w", t.Path, err)
		}
	}
	logger.Info("sync complete", zap.Int("tasks", len(f.Tasks)))
	return nil
}

func runTask(f *task.File, t task.Task) error {
	src, err := os.ReadFile(filepath.Join(templateRoot, t.Template))
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	destPath := filepath.Join(projectRoot, t.Path)
	var destText string
	if data, err := os.ReadFile(destPath); err == nil {
		destText = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read destination: %w", err)
	}

	strategy := f.EffectiveStrategy(t)
	merged, notes := merge.ApplyReport(strategy, string(src), destText, t.Path)
	logNotes(t.Path, notes)

	if merged == destText {
		logger.Debug("unchanged", zap.String("path", t.Path))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create destination dir: %w", err)
	}
	if err := os.WriteFile(destPath, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("failed to write destination: %w", err)
	}
	logger.Info("merged",
		zap.String("path", t.Path),
		zap.String("strategy", strategy.String()),
		zap.Int("notices", len(notes)),
	)
	return nil
}
