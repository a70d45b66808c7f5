package stream

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/betbot/gosdk/pkg/sdk/types"
)

// Book maintains a local orderbook view from stream updates. Feed it
// every update from a subscription handler; snapshots replace the book,
// deltas mutate individual levels, a zero size removes a level.
// Safe for concurrent use.
type Book struct {
	mu      sync.RWMutex
	assetID string
	bids    map[string]decimal.Decimal // price -> size
	asks    map[string]decimal.Decimal
	synced  bool
}

// NewBook builds an empty book for one asset. It stays unsynced and
// drops deltas until the first snapshot arrives.
func NewBook(assetID string) *Book {
	return &Book{
		assetID: assetID,
		bids:    make(map[string]decimal.Decimal),
		asks:    make(map[string]decimal.Decimal),
	}
}

// AssetID returns the asset this book tracks.
func (b *Book) AssetID() string {
	return b.assetID
}

// Synced reports whether a snapshot has been applied.
func (b *Book) Synced() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.synced
}

// Apply folds one update into the book. Updates for other assets are
// ignored.
func (b *Book) Apply(u types.OrderbookUpdate) {
	if u.AssetID != b.assetID {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch u.Type {
	case types.UpdateSnapshot:
		if u.Snapshot == nil {
			return
		}
		b.bids = levelMap(u.Snapshot.Bids)
		b.asks = levelMap(u.Snapshot.Asks)
		b.synced = true

	case types.UpdateDelta:
		if u.Delta == nil || !b.synced {
			return
		}
		for _, ch := range u.Delta.Changes {
			side := b.bids
			if types.Side(ch.Side) == types.SideSell {
				side = b.asks
			}
			size, err := decimal.NewFromString(ch.Size)
			if err != nil {
				continue
			}
			if size.IsZero() {
				delete(side, ch.Price)
			} else {
				side[ch.Price] = size
			}
		}
	}
}

func levelMap(levels []types.PriceLevel) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(levels))
	for _, lv := range levels {
		size, err := decimal.NewFromString(lv.Size)
		if err != nil || size.IsZero() {
			continue
		}
		m[lv.Price] = size
	}
	return m
}

// BestBid returns the highest bid. ok is false when the side is empty
// or the book is unsynced.
func (b *Book) BestBid() (price, size decimal.Decimal, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLevel(b.bids, true)
}

// BestAsk returns the lowest ask.
func (b *Book) BestAsk() (price, size decimal.Decimal, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLevel(b.asks, false)
}

func bestLevel(side map[string]decimal.Decimal, highest bool) (price, size decimal.Decimal, ok bool) {
	for p, s := range side {
		d, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		if !ok || (highest && d.GreaterThan(price)) || (!highest && d.LessThan(price)) {
			price, size, ok = d, s, true
		}
	}
	return price, size, ok
}

// Mid returns the midpoint between best bid and best ask.
func (b *Book) Mid() (decimal.Decimal, bool) {
	bid, _, okBid := b.BestBid()
	ask, _, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

// Spread returns best ask minus best bid.
func (b *Book) Spread() (decimal.Decimal, bool) {
	bid, _, okBid := b.BestBid()
	ask, _, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

// Depth returns the resting size summed over a side.
func (b *Book) Depth(side types.Side) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := b.bids
	if side == types.SideSell {
		levels = b.asks
	}
	total := decimal.Zero
	for _, s := range levels {
		total = total.Add(s)
	}
	return total
}

// Bids returns the bid levels sorted from best (highest) to worst.
func (b *Book) Bids() []types.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedLevels(b.bids, true)
}

// Asks returns the ask levels sorted from best (lowest) to worst.
func (b *Book) Asks() []types.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedLevels(b.asks, false)
}

func sortedLevels(side map[string]decimal.Decimal, descending bool) []types.PriceLevel {
	type entry struct {
		price decimal.Decimal
		raw   string
		size  decimal.Decimal
	}
	entries := make([]entry, 0, len(side))
	for p, s := range side {
		d, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		entries = append(entries, entry{price: d, raw: p, size: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if descending {
			return entries[i].price.GreaterThan(entries[j].price)
		}
		return entries[i].price.LessThan(entries[j].price)
	})

	out := make([]types.PriceLevel, len(entries))
	for i, e := range entries {
		out[i] = types.PriceLevel{Price: e.raw, Size: e.size.String()}
	}
	return out
}
