// Package registry implements the in-memory trade registry on top of an
// embedded buntdb database. Each mutation runs in a single buntdb Update
// transaction, which gives the per-identifier atomicity the relay needs
// without any extra locking. State lives in ":memory:" and is gone on
// restart, which is intentional.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/buntdb"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

// keyPrefix namespaces trade records inside the shared keyspace.
const keyPrefix = "trade:"

// BuntRegistry implements domain.TradeRegistry using buntdb.
type BuntRegistry struct {
	db        *buntdb.DB
	closedTTL time.Duration
	now       func() time.Time
}

// Option customizes a BuntRegistry.
type Option func(*BuntRegistry)

// WithClosedTradeTTL sets how long closed trades remain visible in snapshots
// before buntdb expires them. Zero keeps them forever.
func WithClosedTradeTTL(ttl time.Duration) Option {
	return func(r *BuntRegistry) { r.closedTTL = ttl }
}

// WithClock overrides the registry's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *BuntRegistry) { r.now = now }
}

// New opens an in-memory buntdb database and returns the registry.
func New(opts ...Option) (*BuntRegistry, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("registry: open buntdb: %w", err)
	}

	r := &BuntRegistry{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Shutdown releases the underlying database. Named so it does not collide
// with the trade-closing Close operation.
func (r *BuntRegistry) Shutdown() error {
	return r.db.Close()
}

// UpsertOnEntry stores a freshly opened trade, replacing any existing record
// for the same identifier.
func (r *BuntRegistry) UpsertOnEntry(ctx context.Context, trade domain.Trade) (domain.Trade, error) {
	now := r.now()
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	trade.Status = domain.TradeStatusOpen
	trade.CloseReason = ""
	trade.ExitPrice = 0
	trade.ClosedAt = nil
	if trade.OpenedAt.IsZero() {
		trade.OpenedAt = now
	}
	trade.UpdatedAt = now

	err := r.db.Update(func(tx *buntdb.Tx) error {
		return r.setTrade(tx, trade)
	})
	if err != nil {
		return domain.Trade{}, fmt.Errorf("registry: upsert %s: %w", trade.Identifier, err)
	}
	return trade, nil
}

// UpdateTrailingStop moves the open trade's trailing stop toward the
// candidate. The stop is monotonic per side: buy-side stops only rise,
// sell-side stops only fall. A candidate that would loosen the stop leaves
// the stored value unchanged; the stored trade is returned either way.
func (r *BuntRegistry) UpdateTrailingStop(ctx context.Context, identifier string, candidate float64) (domain.Trade, error) {
	var updated domain.Trade

	err := r.db.Update(func(tx *buntdb.Tx) error {
		trade, err := r.getOpen(tx, identifier)
		if err != nil {
			return err
		}

		switch {
		case trade.TrailingStop == 0:
			trade.TrailingStop = candidate
		case trade.Side == domain.SideSell && candidate < trade.TrailingStop:
			trade.TrailingStop = candidate
		case trade.Side != domain.SideSell && candidate > trade.TrailingStop:
			trade.TrailingStop = candidate
		}
		trade.UpdatedAt = r.now()

		updated = trade
		return r.setTrade(tx, trade)
	})
	if err != nil {
		return domain.Trade{}, err
	}
	return updated, nil
}

// Close transitions the open trade to closed with the given reason and exit
// price. Closed records expire after the configured TTL.
func (r *BuntRegistry) Close(ctx context.Context, identifier string, reason domain.CloseReason, exitPrice float64) (domain.Trade, error) {
	var closed domain.Trade

	err := r.db.Update(func(tx *buntdb.Tx) error {
		trade, err := r.getOpen(tx, identifier)
		if err != nil {
			return err
		}

		now := r.now()
		trade.Status = domain.TradeStatusClosed
		trade.CloseReason = reason
		trade.ExitPrice = exitPrice
		trade.UpdatedAt = now
		trade.ClosedAt = &now

		closed = trade
		return r.setTrade(tx, trade)
	})
	if err != nil {
		return domain.Trade{}, err
	}
	return closed, nil
}

// Get returns the open trade for the identifier, or ErrTradeNotFound.
func (r *BuntRegistry) Get(ctx context.Context, identifier string) (domain.Trade, error) {
	var trade domain.Trade

	err := r.db.View(func(tx *buntdb.Tx) error {
		t, err := r.getOpen(tx, identifier)
		if err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return domain.Trade{}, err
	}
	return trade, nil
}

// Snapshot returns all tracked trades ordered by identifier, including
// closed trades that have not yet expired.
func (r *BuntRegistry) Snapshot(ctx context.Context) ([]domain.Trade, error) {
	trades := make([]domain.Trade, 0)

	err := r.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			var t domain.Trade
			if err := json.Unmarshal([]byte(value), &t); err != nil {
				return true // skip malformed records
			}
			trades = append(trades, t)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("registry: snapshot: %w", err)
	}
	return trades, nil
}

// OpenCount returns the number of currently open trades.
func (r *BuntRegistry) OpenCount(ctx context.Context) (int, error) {
	count := 0

	err := r.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			var t domain.Trade
			if err := json.Unmarshal([]byte(value), &t); err == nil && t.IsOpen() {
				count++
			}
			return true
		})
	})
	if err != nil {
		return 0, fmt.Errorf("registry: open count: %w", err)
	}
	return count, nil
}

// getOpen loads the open trade for an identifier inside a transaction.
// Closed and missing records both map to ErrTradeNotFound.
func (r *BuntRegistry) getOpen(tx *buntdb.Tx, identifier string) (domain.Trade, error) {
	value, err := tx.Get(keyPrefix + identifier)
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return domain.Trade{}, fmt.Errorf("%w: %s", domain.ErrTradeNotFound, identifier)
		}
		return domain.Trade{}, fmt.Errorf("registry: get %s: %w", identifier, err)
	}

	var trade domain.Trade
	if err := json.Unmarshal([]byte(value), &trade); err != nil {
		return domain.Trade{}, fmt.Errorf("registry: decode %s: %w", identifier, err)
	}
	if !trade.IsOpen() {
		return domain.Trade{}, fmt.Errorf("%w: %s is closed", domain.ErrTradeNotFound, identifier)
	}
	return trade, nil
}

// setTrade writes a trade record inside a transaction, applying the closed
// trade TTL when the trade has been closed.
func (r *BuntRegistry) setTrade(tx *buntdb.Tx, trade domain.Trade) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("registry: encode %s: %w", trade.Identifier, err)
	}

	var opts *buntdb.SetOptions
	if !trade.IsOpen() && r.closedTTL > 0 {
		opts = &buntdb.SetOptions{Expires: true, TTL: r.closedTTL}
	}

	if _, _, err := tx.Set(keyPrefix+trade.Identifier, string(data), opts); err != nil {
		return fmt.Errorf("registry: set %s: %w", trade.Identifier, err)
	}
	return nil
}
