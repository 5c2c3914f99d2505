package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kettle-rb/kettle-merge/internal/task"
)

// debounceDur coalesces the event bursts editors produce on save.
const debounceDur = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run sync whenever a template or the task file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch()
	},
}

func runWatch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(templateRoot); err != nil {
		return fmt.Errorf("failed to watch %s: %w", templateRoot, err)
	}
	cfg := configPath
	if cfg == "" {
		cfg = filepath.Join(projectRoot, task.DefaultFileName)
	}
	if _, err := os.Stat(cfg); err == nil {
		_ = watcher.Add(cfg)
	}

	// Initial sync so the watcher starts from a converged state.
	if err := runSync(); err != nil {
		return err
	}
	logger.Info("watching", zap.String("templates", templateRoot))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("template changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDur, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			if err := runSync(); err != nil {
				logger.Error("sync failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case sig := <-sigCh:
			logger.Info("stopping", zap.String("signal", sig.String()))
			return nil
		}
	}
}
