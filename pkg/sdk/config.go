package sdk

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

// Production endpoints, used when the corresponding base URL is not
// overridden.
const (
	DefaultMetaBaseURL    = "https://gamma-api.polymarket.com"
	DefaultClobBaseURL    = "https://clob.polymarket.com"
	DefaultWSBaseURL      = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	DefaultRelayerBaseURL = "https://relayer-v2.polymarket.com"
)

// Config configures the SDK. The zero value works against production
// with market data and streaming only; trading and relayer calls need
// their sections filled in.
type Config struct {
	// Base URL overrides. Empty values fall back to production.
	MetaBaseURL    string
	ClobBaseURL    string
	WSBaseURL      string
	RelayerBaseURL string

	// Debug enables debug-level logging to stderr.
	Debug bool

	// Logger overrides the SDK logger entirely. Takes precedence
	// over Debug.
	Logger *logger.Logger

	// HTTP tunes timeout and retry behavior for all REST calls.
	HTTP *http.Options

	// Proxy routes WebSocket connections through an HTTP proxy.
	Proxy string

	// Trading and Relayer gate their namespaces. A nil section makes
	// the corresponding Init fail with a configuration error.
	Trading *TradingConfig
	Relayer *RelayerConfig
}

// WalletConfig selects one of three credential modes: a raw private
// key, a BIP-39 mnemonic, or an externally managed signer. Exactly one
// must be set; they are checked in that order.
type WalletConfig struct {
	PrivateKey     string
	Mnemonic       string
	DerivationPath string
	Signer         signer.Signer
}

func (w *WalletConfig) resolve() (signer.Signer, error) {
	switch {
	case w.PrivateKey != "":
		return signer.FromHex(w.PrivateKey)
	case w.Mnemonic != "":
		path := w.DerivationPath
		if path == "" {
			path = signer.DefaultDerivationPath
		}
		return signer.FromMnemonic(w.Mnemonic, path)
	case w.Signer != nil:
		return w.Signer, nil
	}
	return nil, types.NewError(types.ErrCodeNotConfigured, "no private key, mnemonic or signer configured")
}

// TradingConfig configures the trading namespace.
type TradingConfig struct {
	ChainID types.Chain
	Wallet  WalletConfig

	// Creds are L2 API credentials. Optional at construction;
	// required for order operations.
	Creds *types.APICreds

	// FunderAddress is the proxy wallet holding funds when orders
	// are placed on behalf of a Safe or Magic account.
	FunderAddress string

	SignatureType types.SignatureType
	Builder       *types.BuilderConfig
}

// RelayerConfig configures the relayer namespace.
type RelayerConfig struct {
	ChainID types.Chain
	Wallet  WalletConfig

	// SafeAddress is the Safe proxy wallet transactions execute
	// through.
	SafeAddress string

	Builder *types.BuilderConfig

	PollInterval time.Duration
	PollTimeout  time.Duration
}

func (c *Config) metaBaseURL() string {
	if c.MetaBaseURL != "" {
		return c.MetaBaseURL
	}
	return DefaultMetaBaseURL
}

func (c *Config) clobBaseURL() string {
	if c.ClobBaseURL != "" {
		return c.ClobBaseURL
	}
	return DefaultClobBaseURL
}

func (c *Config) wsBaseURL() string {
	if c.WSBaseURL != "" {
		return c.WSBaseURL
	}
	return DefaultWSBaseURL
}

func (c *Config) relayerBaseURL() string {
	if c.RelayerBaseURL != "" {
		return c.RelayerBaseURL
	}
	return DefaultRelayerBaseURL
}

func (c *Config) logger() *logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.Debug {
		return logger.Debug()
	}
	return logger.Default()
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, types.NewError(types.ErrCodeBadInput, "invalid address %s", s)
	}
	return common.HexToAddress(s), nil
}
