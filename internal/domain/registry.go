package domain

import "context"

// TradeRegistry tracks the open trades the relay has seen entry alerts for.
// Implementations must make each operation atomic with respect to a single
// identifier: concurrent updates to the same trade never interleave
// partially. State is in-memory only and lost on restart.
type TradeRegistry interface {
	// UpsertOnEntry stores a freshly opened trade, replacing any existing
	// record for the same identifier.
	UpsertOnEntry(ctx context.Context, trade Trade) (Trade, error)

	// UpdateTrailingStop moves the open trade's trailing stop toward the
	// candidate level. The stop is monotonic per side: buy-side stops only
	// rise, sell-side stops only fall. Returns the stored trade after the
	// update, or ErrTradeNotFound when no open trade exists.
	UpdateTrailingStop(ctx context.Context, identifier string, candidate float64) (Trade, error)

	// Close transitions the open trade to closed with the given reason and
	// exit price. Returns ErrTradeNotFound when no open trade exists.
	Close(ctx context.Context, identifier string, reason CloseReason, exitPrice float64) (Trade, error)

	// Get returns the open trade for the identifier, or ErrTradeNotFound.
	Get(ctx context.Context, identifier string) (Trade, error)

	// Snapshot returns all tracked trades ordered by identifier, including
	// closed trades that have not yet expired.
	Snapshot(ctx context.Context) ([]Trade, error)

	// OpenCount returns the number of currently open trades.
	OpenCount(ctx context.Context) (int, error)
}
