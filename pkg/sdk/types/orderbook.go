package types

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// UpdateType classifies an orderbook update.
type UpdateType string

const (
	UpdateSnapshot UpdateType = "snapshot"
	UpdateDelta    UpdateType = "delta"
)

// PriceLevel is one level of the book. Prices and sizes stay string-encoded
// decimals, matching the wire format.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// LevelChange is a single level change in a delta update. Size is the new
// total size at that price; "0" removes the level.
type LevelChange struct {
	Price string `json:"price"`
	Size  string `json:"size"`
	Side  string `json:"side"`
}

// BookSnapshot is the full book state.
type BookSnapshot struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// BookDelta carries incremental level changes.
type BookDelta struct {
	Changes []LevelChange `json:"changes"`
}

// OrderbookUpdate is a tagged union: exactly one of Snapshot or Delta is
// non-nil, selected by Type.
type OrderbookUpdate struct {
	Type      UpdateType
	AssetID   string
	Market    string
	Timestamp int64
	Hash      string
	Snapshot  *BookSnapshot
	Delta     *BookDelta
}

// wire event types on the market channel
const (
	eventBook           = "book"
	eventPriceChange    = "price_change"
	eventLastTradePrice = "last_trade_price"
	eventTickSizeChange = "tick_size_change"
)

type bookFrame struct {
	EventType    string          `json:"event_type"`
	AssetID      string          `json:"asset_id"`
	Market       string          `json:"market"`
	Timestamp    json.RawMessage `json:"timestamp"`
	Hash         string          `json:"hash"`
	Bids         []PriceLevel    `json:"bids"`
	Asks         []PriceLevel    `json:"asks"`
	Changes      []LevelChange   `json:"changes"`
	PriceChanges []priceChange   `json:"price_changes"`
}

type priceChange struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Side    string `json:"side"`
}

// ParseOrderbookFrames decodes a market-channel frame into orderbook updates.
// The server sends both single objects and arrays of objects. Frames that
// carry non-book events (last trades, tick size changes) decode to no
// updates and no error.
func ParseOrderbookFrames(data []byte) ([]OrderbookUpdate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var frames []bookFrame
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &frames); err != nil {
			return nil, errors.Wrap(err, "decode orderbook frame array")
		}
	} else {
		var frame bookFrame
		if err := json.Unmarshal(trimmed, &frame); err != nil {
			return nil, errors.Wrap(err, "decode orderbook frame")
		}
		frames = []bookFrame{frame}
	}

	updates := make([]OrderbookUpdate, 0, len(frames))
	for _, f := range frames {
		if u := f.toUpdate(); u != nil {
			updates = append(updates, *u)
		}
	}
	return updates, nil
}

func (f *bookFrame) toUpdate() *OrderbookUpdate {
	u := &OrderbookUpdate{
		AssetID:   f.AssetID,
		Market:    f.Market,
		Timestamp: parseTimestamp(f.Timestamp),
		Hash:      f.Hash,
	}

	switch f.EventType {
	case eventBook, string(UpdateSnapshot):
		u.Type = UpdateSnapshot
		u.Snapshot = &BookSnapshot{Bids: f.Bids, Asks: f.Asks}
		return u
	case eventPriceChange, string(UpdateDelta):
		u.Type = UpdateDelta
		u.Delta = &BookDelta{Changes: f.deltaChanges()}
		return u
	case eventLastTradePrice, eventTickSizeChange:
		return nil
	}

	// Untagged frames: a full book implies a snapshot, changes imply a delta.
	if f.Bids != nil || f.Asks != nil {
		u.Type = UpdateSnapshot
		u.Snapshot = &BookSnapshot{Bids: f.Bids, Asks: f.Asks}
		return u
	}
	if len(f.Changes) > 0 || len(f.PriceChanges) > 0 {
		u.Type = UpdateDelta
		u.Delta = &BookDelta{Changes: f.deltaChanges()}
		return u
	}
	return nil
}

func (f *bookFrame) deltaChanges() []LevelChange {
	if len(f.Changes) > 0 {
		return f.Changes
	}
	changes := make([]LevelChange, 0, len(f.PriceChanges))
	for _, pc := range f.PriceChanges {
		changes = append(changes, LevelChange{Price: pc.Price, Size: pc.Size, Side: pc.Side})
	}
	return changes
}

// parseTimestamp accepts both string and numeric timestamps, normalizing
// millisecond values to seconds.
func parseTimestamp(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	s := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	if ts > 1e12 {
		ts /= 1000
	}
	return ts
}
