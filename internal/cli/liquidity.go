package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"options-scout/internal/liquidity"
	"options-scout/pkg/utils"
)

func newLiquidityCmd(app *App) *cobra.Command {
	var (
		oi     int64
		spread float64
		volume int64
		dte    int
	)

	cmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Grade a hypothetical contract's liquidity",
		Long: `Liquidity scores a contract from open interest, bid/ask spread
percent, volume, and DTE with the same grader the scan uses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			grader := liquidity.NewGrader()
			score, grade := grader.Score(liquidity.Inputs{
				OpenInterest:  oi,
				SpreadPercent: spread,
				Volume:        volume,
				DTE:           dte,
			})

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"score": score,
					"grade": grade,
				})
			}

			color.Cyan("💧 Liquidity Grade")
			output.Printf("  OI %d, spread %s, volume %d, DTE %d\n",
				oi, utils.FormatPercent(spread), volume, dte)
			output.Printf("  Score: %s (%s)\n", utils.FormatScore(score), grade)
			return nil
		},
	}

	cmd.Flags().Int64Var(&oi, "oi", 0, "open interest")
	cmd.Flags().Float64Var(&spread, "spread", 0, "bid/ask spread as percent of mid")
	cmd.Flags().Int64Var(&volume, "volume", 0, "daily volume")
	cmd.Flags().IntVar(&dte, "dte", 30, "days to expiration")

	return cmd
}
