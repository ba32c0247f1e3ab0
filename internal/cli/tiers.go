package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"options-scout/internal/tiers"
)

func newTiersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers [strategy...]",
		Short: "Show broker-approval tiers for strategy names",
		Long: `Tiers classifies strategy names against the approval table using the
tiers unlocked in configuration. With no arguments it classifies a
representative strategy from each tier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			table := tiers.NewTable(app.Config.Tiers.Unlocked)

			names := args
			if len(names) == 0 {
				names = []string{
					"long call", "covered call", "cash-secured put",
					"bull call spread", "iron condor", "calendar spread",
				}
			}

			if output.IsJSON() {
				classified := make(map[string]tiers.Classification, len(names))
				for _, name := range names {
					classified[name] = table.Classify(name)
				}
				return output.JSON(classified)
			}

			color.Cyan("🎚  Strategy Tiers")
			output.Println()
			for _, name := range names {
				c := table.Classify(name)
				if c.ExecutionReady {
					output.Success("  [%d] %-24s scannable", c.Tier, name)
				} else {
					output.Warning("  [%d] %-24s blocked: %s", c.Tier, name, c.Blocker)
				}
			}
			return nil
		},
	}
}
