// Package sdk is the entry point for the Polymarket client. It exposes
// market data and orderbook streaming directly and gates trading and
// relayer functionality behind lazily initialized namespaces.
package sdk

import (
	"context"
	"sync"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/data"
	"github.com/betbot/gosdk/pkg/sdk/relayer"
	"github.com/betbot/gosdk/pkg/sdk/stream"
	"github.com/betbot/gosdk/pkg/sdk/trading"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

// SDK composes the market-data, streaming, trading and relayer clients
// behind one object. Safe for concurrent use.
type SDK struct {
	cfg    *Config
	log    *logger.Logger
	data   *data.Client
	stream *stream.Client

	trading *TradingNamespace
	relayer *RelayerNamespace
}

// New builds an SDK from the given configuration. A nil config uses
// production defaults with market data and streaming only.
func New(cfg *Config) *SDK {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.logger()

	streamClient := stream.NewClient(cfg.wsBaseURL(), log)
	if cfg.Proxy != "" {
		streamClient.SetProxy(cfg.Proxy)
	}

	s := &SDK{
		cfg:    cfg,
		log:    log,
		data:   data.NewClient(cfg.metaBaseURL(), cfg.HTTP, log),
		stream: streamClient,
	}
	s.trading = &TradingNamespace{sdk: s}
	s.relayer = &RelayerNamespace{sdk: s}
	return s
}

// GetMarkets lists active markets.
func (s *SDK) GetMarkets(ctx context.Context) ([]types.Market, error) {
	return s.data.GetMarkets(ctx)
}

// GetMarket fetches one market by id.
func (s *SDK) GetMarket(ctx context.Context, id string) (*types.Market, error) {
	return s.data.GetMarket(ctx, id)
}

// GetMarketBySlug fetches one market by URL slug.
func (s *SDK) GetMarketBySlug(ctx context.Context, slug string) (*types.Market, error) {
	return s.data.GetMarketBySlug(ctx, slug)
}

// OnOrderbook subscribes to orderbook updates for one asset. The
// returned function tears the subscription down; calling it more than
// once is harmless. After it returns, the handler will not be invoked
// again.
func (s *SDK) OnOrderbook(assetID string, onUpdate stream.UpdateHandler, opts ...stream.Option) (func(), error) {
	sub, err := s.stream.Subscribe(assetID, onUpdate, opts...)
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}

// Trading returns the trading namespace. Call Init on it to obtain the
// trading client.
func (s *SDK) Trading() *TradingNamespace {
	return s.trading
}

// Relayer returns the relayer namespace. Call Init on it to obtain the
// relayer client.
func (s *SDK) Relayer() *RelayerNamespace {
	return s.relayer
}

// TradingNamespace lazily constructs the trading client from the SDK
// configuration. Construction happens once; later Init calls return
// the same client.
type TradingNamespace struct {
	mu     sync.Mutex
	sdk    *SDK
	client *trading.Client
}

// Init validates the trading configuration and returns the trading
// client. It fails immediately when the SDK was built without a
// trading section.
func (n *TradingNamespace) Init() (*trading.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		return n.client, nil
	}

	cfg := n.sdk.cfg.Trading
	if cfg == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "trading is not configured, pass a Trading section to sdk.New")
	}

	sig, err := cfg.Wallet.resolve()
	if err != nil {
		return nil, err
	}

	client, err := trading.NewClient(n.sdk.cfg.clobBaseURL(), &trading.Config{
		ChainID:       cfg.ChainID,
		Signer:        sig,
		Creds:         cfg.Creds,
		FunderAddress: cfg.FunderAddress,
		SignatureType: cfg.SignatureType,
		Builder:       cfg.Builder,
	}, n.sdk.cfg.HTTP, n.sdk.log)
	if err != nil {
		return nil, err
	}

	n.client = client
	return client, nil
}

// RelayerNamespace lazily constructs the relayer client from the SDK
// configuration.
type RelayerNamespace struct {
	mu     sync.Mutex
	sdk    *SDK
	client *relayer.Client
}

// Init validates the relayer configuration and returns the relayer
// client. It fails immediately when the SDK was built without a
// relayer section.
func (n *RelayerNamespace) Init() (*relayer.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		return n.client, nil
	}

	cfg := n.sdk.cfg.Relayer
	if cfg == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "relayer is not configured, pass a Relayer section to sdk.New")
	}

	sig, err := cfg.Wallet.resolve()
	if err != nil {
		return nil, err
	}
	safeAddr, err := parseAddress(cfg.SafeAddress)
	if err != nil {
		return nil, err
	}

	client, err := relayer.NewClient(n.sdk.cfg.relayerBaseURL(), &relayer.Config{
		ChainID:      cfg.ChainID,
		Signer:       sig,
		SafeAddress:  safeAddr,
		Builder:      cfg.Builder,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
	}, n.sdk.cfg.HTTP, n.sdk.log)
	if err != nil {
		return nil, err
	}

	n.client = client
	return client, nil
}
