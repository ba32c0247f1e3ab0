package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	scouterrors "options-scout/internal/errors"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved runs or show one run's results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return scouterrors.ErrStoreUnavailable
			}

			if len(args) == 1 {
				return showRun(cmd, app, output, args[0])
			}

			runs, err := app.Store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(runs)
			}

			color.Cyan("📜 Saved Runs")
			if len(runs) == 0 {
				output.Dim("  No runs saved yet. Use 'scan --save'.")
				return nil
			}
			for _, r := range runs {
				output.Printf("  %-32s %s  %s  %d candidates\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Provider, r.Candidates)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func showRun(cmd *cobra.Command, app *App, output *Output, runID string) error {
	run, results, err := app.Store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"run":     run,
			"results": results,
		})
	}

	color.Cyan("📜 Run %s (%s, %d candidates)",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.Candidates)
	output.Println()
	renderScan(output, results)
	return nil
}
