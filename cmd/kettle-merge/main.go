// Package main provides the kettle-merge CLI.
//
// kettle-merge templates Gemfile- and Appraisals-style files by structurally
// merging a template version into the consumer's existing file:
//   - apply: merge one template into one destination file
//   - sync:  run every task declared in .kettle-merge.yml
//   - watch: re-run sync whenever a template changes
//   - dump:  print the parsed statement tree of a file
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kettle-rb/kettle-merge/internal/parse"
	"github.com/kettle-rb/kettle-merge/merge"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	templateRoot string
	projectRoot  string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kettle-merge",
	Short: "Structural merge of Gemfile and Appraisals templates",
	Long: `kettle-merge merges template Gemfiles, modular gemfiles and Appraisals
files into a consumer project. Merging is structural: statements match by
call name and primary argument, matched blocks union their bodies, comments
stay attached to the statements that own them, and re-running a merge on its
own output is a no-op.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [destination]",
	Short: "Merge one template into one destination file",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var (
	applyStrategy string
	applyTemplate string
	applyWrite    bool
)

func runApply(cmd *cobra.Command, args []string) error {
	dest := args[0]

	strategy, err := merge.ParseStrategy(applyStrategy)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(applyTemplate)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	// A missing destination is not an error: the merge contract treats it
	// as the empty string.
	var destText string
	if data, err := os.ReadFile(dest); err == nil {
		destText = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read destination: %w", err)
	}

	merged, notes := merge.ApplyReport(strategy, string(src), destText, dest)
	logNotes(dest, notes)

	if applyWrite {
		if err := os.WriteFile(dest, []byte(merged), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		logger.Info("merged", zap.String("path", dest), zap.String("strategy", strategy.String()))
		return nil
	}
	fmt.Print(merged)
	return nil
}

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print the parsed statement tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		spew.Dump(parse.Parse(string(data)))
		return nil
	},
}

func logNotes(path string, notes []merge.Note) {
	for _, n := range notes {
		logger.Debug("merge notice",
			zap.String("path", path),
			zap.String("code", n.Code),
			zap.String("message", n.Message),
			zap.String("detail", n.Detail),
		)
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	applyCmd.Flags().StringVarP(&applyStrategy, "strategy", "s", "merge", "merge strategy (skip|merge|replace|append)")
	applyCmd.Flags().StringVarP(&applyTemplate, "template", "t", "", "template file to merge in")
	applyCmd.Flags().BoolVarP(&applyWrite, "write", "w", false, "write the result back instead of printing it")
	_ = applyCmd.MarkFlagRequired("template")

	for _, c := range []*cobra.Command{syncCmd, watchCmd} {
		c.Flags().StringVarP(&configPath, "config", "c", "", "task file (default .kettle-merge.yml in the project root)")
		c.Flags().StringVar(&templateRoot, "templates", "templates", "template root directory")
		c.Flags().StringVar(&projectRoot, "root", ".", "project root directory")
	}

	rootCmd.AddCommand(applyCmd, syncCmd, watchCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
