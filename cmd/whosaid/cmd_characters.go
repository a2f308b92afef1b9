package main

import (
	"fmt"
	"text/tabwriter"

	"whosaid/internal/app"
	"whosaid/internal/config/loader"

	"github.com/spf13/cobra"
)

var (
	charFilms    []string
	charMinLines int
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List characters above the line threshold",
	RunE:  listCharacters,
}

var filmsCmd = &cobra.Command{
	Use:   "films",
	Short: "List the films in the catalog",
	RunE:  listFilms,
}

func init() {
	charactersCmd.Flags().StringSliceVar(&charFilms, "films", nil, "films to count (default: current selection)")
	charactersCmd.Flags().IntVar(&charMinLines, "min-lines", 0, "keep characters with more than this many lines (default: current selection)")
}

func listCharacters(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	films, minLines := characterQuery(cmd, a.Selection().Selection)
	totals, err := a.Characters(cmd.Context(), films, minLines)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHARACTER\tLINES")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%d\n", t.Character, t.Lines)
	}
	return w.Flush()
}

// characterQuery fills the flags the user did not set from the current
// selection.
func characterQuery(cmd *cobra.Command, sel loader.Selection) ([]string, int) {
	films := charFilms
	if len(films) == 0 {
		films = sel.Films
	}
	minLines := sel.MinLines
	if cmd.Flags().Changed("min-lines") {
		minLines = charMinLines
	}
	return films, minLines
}

func listFilms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	for _, label := range a.Films() {
		fmt.Fprintln(cmd.OutOrStdout(), label)
	}
	return nil
}
