package types

import (
	"testing"
)

func TestParseOrderbookFrames_BookSnapshot(t *testing.T) {
	data := []byte(`{
		"event_type": "book",
		"asset_id": "token-1",
		"market": "0xabc",
		"timestamp": "1700000000123",
		"hash": "h1",
		"bids": [{"price": "0.48", "size": "100"}, {"price": "0.47", "size": "50"}],
		"asks": [{"price": "0.52", "size": "200"}]
	}`)

	updates, err := ParseOrderbookFrames(data)
	if err != nil {
		t.Fatalf("ParseOrderbookFrames failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}

	u := updates[0]
	if u.Type != UpdateSnapshot {
		t.Errorf("expected snapshot, got %s", u.Type)
	}
	if u.Snapshot == nil || u.Delta != nil {
		t.Fatal("snapshot update should set Snapshot only")
	}
	if u.AssetID != "token-1" {
		t.Errorf("unexpected asset id: %s", u.AssetID)
	}
	if u.Timestamp != 1700000000 {
		t.Errorf("millisecond timestamp should normalize to seconds, got %d", u.Timestamp)
	}
	if len(u.Snapshot.Bids) != 2 || len(u.Snapshot.Asks) != 1 {
		t.Errorf("unexpected book depth: %d bids, %d asks", len(u.Snapshot.Bids), len(u.Snapshot.Asks))
	}
	if u.Snapshot.Bids[0].Price != "0.48" || u.Snapshot.Bids[0].Size != "100" {
		t.Errorf("unexpected best bid: %+v", u.Snapshot.Bids[0])
	}
}

func TestParseOrderbookFrames_PriceChangeDelta(t *testing.T) {
	data := []byte(`{
		"event_type": "price_change",
		"asset_id": "token-1",
		"market": "0xabc",
		"timestamp": 1700000001,
		"changes": [
			{"price": "0.48", "size": "0", "side": "BUY"},
			{"price": "0.49", "size": "75", "side": "BUY"}
		]
	}`)

	updates, err := ParseOrderbookFrames(data)
	if err != nil {
		t.Fatalf("ParseOrderbookFrames failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}

	u := updates[0]
	if u.Type != UpdateDelta {
		t.Errorf("expected delta, got %s", u.Type)
	}
	if u.Delta == nil || u.Snapshot != nil {
		t.Fatal("delta update should set Delta only")
	}
	if len(u.Delta.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(u.Delta.Changes))
	}
	if u.Delta.Changes[0].Size != "0" {
		t.Errorf("size 0 (level removal) must be preserved, got %s", u.Delta.Changes[0].Size)
	}
}

func TestParseOrderbookFrames_PriceChangesArrayFormat(t *testing.T) {
	data := []byte(`{
		"event_type": "price_change",
		"market": "0xabc",
		"price_changes": [
			{"asset_id": "token-1", "price": "0.51", "size": "10", "side": "SELL"}
		]
	}`)

	updates, err := ParseOrderbookFrames(data)
	if err != nil {
		t.Fatalf("ParseOrderbookFrames failed: %v", err)
	}
	if len(updates) != 1 || updates[0].Type != UpdateDelta {
		t.Fatalf("expected one delta update, got %+v", updates)
	}
	if updates[0].Delta.Changes[0].Price != "0.51" {
		t.Errorf("unexpected change: %+v", updates[0].Delta.Changes[0])
	}
}

func TestParseOrderbookFrames_ArrayFrame(t *testing.T) {
	data := []byte(`[
		{"event_type": "book", "asset_id": "a", "bids": [], "asks": []},
		{"event_type": "price_change", "asset_id": "a", "changes": [{"price": "0.5", "size": "1", "side": "BUY"}]}
	]`)

	updates, err := ParseOrderbookFrames(data)
	if err != nil {
		t.Fatalf("ParseOrderbookFrames failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Type != UpdateSnapshot || updates[1].Type != UpdateDelta {
		t.Errorf("array frame order not preserved: %s, %s", updates[0].Type, updates[1].Type)
	}
}

func TestParseOrderbookFrames_IgnoresNonBookEvents(t *testing.T) {
	for _, data := range []string{
		`{"event_type": "last_trade_price", "asset_id": "a", "price": "0.5"}`,
		`{"event_type": "tick_size_change", "asset_id": "a", "old_tick_size": "0.01", "new_tick_size": "0.001"}`,
	} {
		updates, err := ParseOrderbookFrames([]byte(data))
		if err != nil {
			t.Fatalf("non-book event should not error: %v", err)
		}
		if len(updates) != 0 {
			t.Errorf("non-book event should decode to no updates, got %+v", updates)
		}
	}
}

func TestParseOrderbookFrames_Invalid(t *testing.T) {
	if _, err := ParseOrderbookFrames([]byte(`{not json`)); err == nil {
		t.Error("invalid JSON should error")
	}
	updates, err := ParseOrderbookFrames([]byte("  "))
	if err != nil || len(updates) != 0 {
		t.Errorf("blank frame should decode to nothing, got %v, %v", updates, err)
	}
}

func TestHTTPError(t *testing.T) {
	e := &HTTPError{StatusCode: 429, Endpoint: "/markets", Body: "rate limited"}
	if !e.IsRetryable() {
		t.Error("429 should be retryable")
	}
	e2 := &HTTPError{StatusCode: 404, Endpoint: "/markets/x"}
	if e2.IsRetryable() {
		t.Error("404 should not be retryable")
	}
	if e2.Error() == "" {
		t.Error("error string should not be empty")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := &HTTPError{StatusCode: 500, Endpoint: "/x"}
	e := WrapError(cause, ErrCodeHTTP, "request failed")
	if e.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if e.Error() == "" {
		t.Error("error string should not be empty")
	}
}
