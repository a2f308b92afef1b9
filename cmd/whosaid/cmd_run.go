package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"whosaid/internal/app"
	"whosaid/internal/config"

	"github.com/spf13/cobra"
)

var (
	runFilms    []string
	runMinLines int
	runFocus    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the dashboard once",
	Long: `Compute the dashboard for the configured selection and write the chart
page, the JSON report and, when enabled, a PNG snapshot.

Flags override the selection; any override ignores selection.path.`,
	RunE: runOnce,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute the dashboard whenever the selection changes",
	RunE:  runWatch,
}

func init() {
	runCmd.Flags().StringSliceVar(&runFilms, "films", nil, "films in display order (repeat or comma separate)")
	runCmd.Flags().IntVar(&runMinLines, "min-lines", -1, "keep characters with more than this many lines")
	runCmd.Flags().StringVar(&runFocus, "focus", "", "character for the focused word cloud")
}

// applyOverrides copies the run flags onto the selection.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	changed := false
	if cmd.Flags().Changed("films") {
		cfg.Selection.Films = runFilms
		changed = true
	}
	if cmd.Flags().Changed("min-lines") {
		cfg.Selection.MinLines = runMinLines
		changed = true
	}
	if cmd.Flags().Changed("focus") {
		cfg.Selection.Focus = runFocus
		changed = true
	}
	if !changed {
		return nil
	}
	cfg.Selection.Path = ""
	return config.ValidateSelection(cfg.Selection.Films, cfg.Selection.MinLines)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d characters, focus %s\n", res.RunID, len(res.Characters), orDash(res.Focus))
	names := make([]string, 0, len(res.Artifacts))
	for name := range res.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-8s %s\n", name, res.Artifacts[name])
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
