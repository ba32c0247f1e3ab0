package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"options-scout/internal/chain"
	scouterrors "options-scout/internal/errors"
	"options-scout/internal/logging"
	"options-scout/internal/models"
	"options-scout/internal/pipeline"
	"options-scout/internal/store"
	"options-scout/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	var (
		candidatesFile string
		chainsFile     string
		live           bool
		strict         bool
		save           bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the scan pipeline over a candidates file",
		Long: `Scan reads strategy candidates from a JSON file, fetches option
chains from the configured provider, and prints one annotated row per
candidate: tier, selection, liquidity, PCS, and acceptance status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			candidates, err := loadCandidates(candidatesFile)
			if err != nil {
				return err
			}

			cfg := *app.Config
			if strict {
				cfg.Filter.StrictMode = true
			}

			provider, providerName, err := buildProvider(app, chainsFile, live)
			if err != nil {
				return err
			}

			evaluator := pipeline.New(&cfg, provider, app.Logger)
			results := evaluator.Evaluate(cmd.Context(), candidates)

			if output.IsJSON() {
				if err := output.JSON(results); err != nil {
					return err
				}
			} else {
				renderScan(output, results)
			}

			if save {
				if app.Store == nil {
					output.Warning("Run store unavailable, results not saved")
					return nil
				}
				run := store.Run{
					ID:         store.NewRunID(time.Now()),
					CreatedAt:  time.Now().UTC(),
					Provider:   providerName,
					Candidates: len(candidates),
				}
				if err := app.Store.SaveRun(cmd.Context(), run, results); err != nil {
					return err
				}
				runLogger := logging.WithRunID(app.Logger, run.ID)
				runLogger.Info().
					Int("candidates", run.Candidates).Msg("Run saved")
				output.Success("✓ Saved run %s", run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&candidatesFile, "candidates", "c", "", "JSON file of strategy candidates (required)")
	cmd.Flags().StringVar(&chainsFile, "chains", "", "JSON chain fixture for the static provider")
	cmd.Flags().BoolVar(&live, "live", false, "fetch chains from Kite instead of a fixture")
	cmd.Flags().BoolVar(&strict, "strict", false, "tighten the pre-filter thresholds")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run for 'history'")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func loadCandidates(path string) ([]models.StrategyCandidate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}
	var candidates []models.StrategyCandidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("parsing candidates file: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidates file %s is empty", path)
	}
	for i, c := range candidates {
		if c.Ticker == "" {
			return nil, scouterrors.NewValidationError("ticker", i, "candidate ticker is empty")
		}
		if c.Strategy == "" {
			return nil, scouterrors.NewValidationError("strategy", c.Ticker, "candidate strategy is empty")
		}
		if c.MinDTE > c.MaxDTE {
			return nil, scouterrors.NewValidationError("min_dte", c.MinDTE,
				fmt.Sprintf("exceeds max_dte %d for %s %s", c.MaxDTE, c.Ticker, c.Strategy))
		}
	}
	return candidates, nil
}

func buildProvider(app *App, chainsFile string, live bool) (chain.Provider, string, error) {
	if live || app.Config.Chain.Provider == chain.ProviderKite {
		p, err := chain.NewKiteProvider(app.Config.Chain)
		if err != nil {
			return nil, "", err
		}
		return chain.NewBreakerProvider(p, chain.DefaultBreakerConfig()), chain.ProviderKite, nil
	}
	if chainsFile == "" {
		return nil, "", fmt.Errorf("static provider requires --chains")
	}
	p, err := chain.LoadStaticProvider(chainsFile)
	if err != nil {
		return nil, "", err
	}
	return p, chain.ProviderStatic, nil
}

func renderScan(output *Output, results []models.AnnotatedResult) {
	color.Cyan("🔍 Scan Results (%d candidates)", len(results))
	if !utils.IsMarketOpen(time.Now()) {
		output.Dim("  market closed, quotes may be stale")
	}
	output.Println()

	output.Printf("%-6s %-22s %-4s %-10s %-8s %-6s %-20s\n",
		"TICKER", "STRATEGY", "TIER", "LIQ", "PCS", "FILTER", "ACCEPTANCE")
	for _, r := range results {
		sel := r.Scored.Selection
		output.Printf("%-6s %-22s %-4d %-10s %-8s %-6s %-20s\n",
			r.Candidate.Ticker,
			r.Candidate.Strategy,
			r.Tier,
			fmt.Sprintf("%s %s", utils.FormatScore(sel.LiquidityScore), sel.LiquidityGrade),
			utils.FormatScore(r.Scored.PCS),
			r.Scored.FilterStatus,
			output.Status(r.Acceptance.Status),
		)
		output.Dim("       %s", r.Acceptance.Reason)
	}

	output.Println()
	renderPairings(output, results)
	renderSummary(output, results)
}

func renderPairings(output *Output, results []models.AnnotatedResult) {
	seen := make(map[string]bool)
	var any bool
	for _, r := range results {
		w := r.Paired
		if w == nil || seen[w.Ticker] {
			continue
		}
		seen[w.Ticker] = true
		if !any {
			color.Cyan("💰 Capital Allocation")
			any = true
		}
		sizing := fmt.Sprintf("%d contract(s)", w.RecommendedContracts)
		if w.ManualSizing {
			sizing = "manual sizing"
		}
		output.Printf("  %-6s %-30s %s allocated, %s\n",
			w.Ticker, w.Strategy, utils.FormatUSD(w.AllocatedCapital), sizing)
	}
	if any {
		output.Println()
	}
}

func renderSummary(output *Output, results []models.AnnotatedResult) {
	counts := make(map[models.AcceptanceStatus]int)
	for _, r := range results {
		counts[r.Acceptance.Status]++
	}
	order := []models.AcceptanceStatus{
		models.StatusReadyNow, models.StatusStructurallyReady,
		models.StatusWait, models.StatusAvoid, models.StatusIncomplete,
	}
	for _, status := range order {
		if counts[status] == 0 {
			continue
		}
		output.Printf("  %s: %d\n", output.Status(status), counts[status])
	}
}
