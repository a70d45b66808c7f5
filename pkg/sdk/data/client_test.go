package data

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sdkhttp "github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

func testOptions() *sdkhttp.Options {
	return &sdkhttp.Options{
		Timeout:      5 * time.Second,
		RetryCount:   3,
		RetryWait:    10 * time.Millisecond,
		RetryMaxWait: 50 * time.Millisecond,
	}
}

func TestGetMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("active") != "true" || q.Get("closed") != "false" {
			t.Errorf("expected active=true&closed=false, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.Market{
			{ID: "1", Question: "Will it rain?", Active: true},
			{ID: "2", Question: "Will it snow?", Active: true},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	markets, err := client.GetMarkets(context.Background())
	if err != nil {
		t.Fatalf("GetMarkets failed: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(markets))
	}
	if markets[0].ID != "1" || markets[1].Question != "Will it snow?" {
		t.Errorf("unexpected markets: %+v", markets)
	}
}

func TestGetMarkets_RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	markets, err := client.GetMarkets(context.Background())
	if err != nil {
		t.Fatalf("GetMarkets should succeed on the third attempt: %v", err)
	}
	if len(markets) != 1 {
		t.Errorf("expected 1 market, got %d", len(markets))
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestGetMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.Market{ID: "42", Question: "Q"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	market, err := client.GetMarket(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetMarket failed: %v", err)
	}
	if market.ID != "42" {
		t.Errorf("unexpected market: %+v", market)
	}
}

func TestGetMarket_NotFound(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, `{"error":"market not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	_, err := client.GetMarket(context.Background(), "nope")
	if err == nil {
		t.Fatal("missing market should error")
	}
	var httpErr *types.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected HTTPError 404, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("404 must not retry, got %d attempts", got)
	}
}

func TestGetMarket_EmptyID(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", testOptions(), nil)
	if _, err := client.GetMarket(context.Background(), ""); err == nil {
		t.Fatal("empty id should error without a request")
	}
}

func TestGetMarketBySlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slug") != "btc-up" {
			t.Errorf("missing slug param: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"9","slug":"btc-up"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	market, err := client.GetMarketBySlug(context.Background(), "btc-up")
	if err != nil {
		t.Fatalf("GetMarketBySlug failed: %v", err)
	}
	if market.Slug != "btc-up" {
		t.Errorf("unexpected market: %+v", market)
	}
}

func TestGetMarketBySlug_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testOptions(), nil)
	if _, err := client.GetMarketBySlug(context.Background(), "ghost"); err == nil {
		t.Fatal("empty result should error")
	}
}
