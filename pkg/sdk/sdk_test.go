package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/betbot/gosdk/pkg/sdk/types"
)

const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNew_DefaultsWork(t *testing.T) {
	s := New(nil)
	if s.Trading() == nil || s.Relayer() == nil {
		t.Fatal("namespaces must exist even without configuration")
	}
}

func TestGetMarkets_ThroughFacade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"1","question":"Will it rain?"}]`))
	}))
	defer srv.Close()

	s := New(&Config{MetaBaseURL: srv.URL})
	markets, err := s.GetMarkets(context.Background())
	if err != nil {
		t.Fatalf("GetMarkets failed: %v", err)
	}
	if len(markets) != 1 || markets[0].Question != "Will it rain?" {
		t.Errorf("unexpected markets: %+v", markets)
	}
}

func TestTradingInit_NotConfigured(t *testing.T) {
	s := New(&Config{})
	_, err := s.Trading().Init()
	if err == nil {
		t.Fatal("Init without trading config must fail synchronously")
	}
	sdkErr, ok := err.(*types.Error)
	if !ok || sdkErr.Code != types.ErrCodeNotConfigured {
		t.Errorf("expected not_configured error, got %v", err)
	}
	if !strings.Contains(err.Error(), "trading") {
		t.Errorf("error should name the missing section: %v", err)
	}
}

func TestRelayerInit_NotConfigured(t *testing.T) {
	s := New(&Config{})
	_, err := s.Relayer().Init()
	if err == nil {
		t.Fatal("Init without relayer config must fail synchronously")
	}
	sdkErr, ok := err.(*types.Error)
	if !ok || sdkErr.Code != types.ErrCodeNotConfigured {
		t.Errorf("expected not_configured error, got %v", err)
	}
}

func TestTradingInit_ReturnsSameClient(t *testing.T) {
	s := New(&Config{
		Trading: &TradingConfig{
			ChainID: types.ChainPolygon,
			Wallet:  WalletConfig{PrivateKey: testKeyHex},
		},
	})
	first, err := s.Trading().Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	second, err := s.Trading().Init()
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if first != second {
		t.Error("Init must return the same client on repeat calls")
	}
}

func TestTradingInit_BadWallet(t *testing.T) {
	s := New(&Config{
		Trading: &TradingConfig{ChainID: types.ChainPolygon},
	})
	if _, err := s.Trading().Init(); err == nil {
		t.Fatal("Init with no credentials must fail")
	}
}

func TestRelayerInit_WithMnemonic(t *testing.T) {
	s := New(&Config{
		Relayer: &RelayerConfig{
			ChainID:     types.ChainPolygon,
			Wallet:      WalletConfig{Mnemonic: "test test test test test test test test test test test junk"},
			SafeAddress: "0x1111111111111111111111111111111111111111",
		},
	})
	client, err := s.Relayer().Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	// Hardhat account #0 for the well-known test mnemonic.
	if client.Address().Hex() != "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266" {
		t.Errorf("unexpected signer address %s", client.Address().Hex())
	}
}

func TestRelayerInit_BadSafeAddress(t *testing.T) {
	s := New(&Config{
		Relayer: &RelayerConfig{
			Wallet:      WalletConfig{PrivateKey: testKeyHex},
			SafeAddress: "not-an-address",
		},
	})
	if _, err := s.Relayer().Init(); err == nil {
		t.Fatal("Init with an invalid safe address must fail")
	}
}

func TestOnOrderbook_EndToEnd(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"event_type":"book","asset_id":"42","bids":[{"price":"0.5","size":"10"}],"asks":[]}`))
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	s := New(&Config{WSBaseURL: wsURL})

	got := make(chan types.OrderbookUpdate, 1)
	unsubscribe, err := s.OnOrderbook("42", func(u types.OrderbookUpdate) {
		got <- u
	})
	if err != nil {
		t.Fatalf("OnOrderbook failed: %v", err)
	}
	defer unsubscribe()

	select {
	case u := <-got:
		if u.Type != types.UpdateSnapshot || u.AssetID != "42" {
			t.Errorf("unexpected update: %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for orderbook update")
	}

	// A second call to the unsubscribe function is a no-op.
	unsubscribe()
	unsubscribe()
}
