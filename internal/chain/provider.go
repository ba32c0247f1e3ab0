// Package chain supplies option-chain snapshots to the pipeline. A
// provider is the only blocking collaborator in a scan; the pipeline
// calls Fetch at most once per ticker per run and caches the result.
package chain

import (
	"context"

	"options-scout/internal/models"
)

// TickerData is everything one fetch returns for a ticker: the chain
// snapshot plus the context the acceptance gate needs.
type TickerData struct {
	Snapshot models.ChainSnapshot
	Context  models.TickerContext
}

// Provider fetches per-ticker market data. Implementations must be safe
// for concurrent use; the pipeline fans out across tickers.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (*TickerData, error)
}

// Name identifiers accepted by config and the CLI.
const (
	ProviderStatic = "static"
	ProviderKite   = "kite"
)
