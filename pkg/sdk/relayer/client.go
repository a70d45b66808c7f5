// Package relayer submits gasless transactions through Polymarket's
// relayer service. Calls are executed by the user's Safe proxy wallet;
// the relayer pays gas and tracks transaction state until it is mined.
package relayer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

const (
	// DefaultBaseURL is the production relayer endpoint.
	DefaultBaseURL = "https://relayer-v2.polymarket.com"

	zeroAddress              = "0x0000000000000000000000000000000000000000"
	collateralAddress        = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	conditionalTokensAddress = "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"

	endpointSubmit       = "/submit"
	endpointDeploy       = "/deploy"
	endpointNonce        = "/nonce"
	endpointDeployed     = "/deployed"
	endpointAddress      = "/relayer-address"
	endpointTransaction  = "/transaction"
	endpointTransactions = "/transactions"

	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 60 * time.Second
)

// Config configures a relayer client.
type Config struct {
	// ChainID selects the network. Defaults to Polygon mainnet.
	ChainID types.Chain

	// Signer is the Safe owner key used to sign transactions.
	Signer signer.Signer

	// SafeAddress is the user's Safe proxy wallet.
	SafeAddress common.Address

	// Builder enables builder attribution headers on every request.
	Builder *types.BuilderConfig

	// PollInterval and PollTimeout bound WaitForTransaction. Zero
	// values fall back to the defaults.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client talks to the relayer REST API.
type Client struct {
	http         *http.Client
	cfg          *Config
	signerAddr   common.Address
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          *logger.Logger
}

// NewClient builds a relayer client. The signer and Safe address are
// required; everything else has defaults.
func NewClient(baseURL string, cfg *Config, httpOpts *http.Options, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "relayer config is nil")
	}
	if cfg.Signer == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "relayer config has no signer")
	}
	if (cfg.SafeAddress == common.Address{}) {
		return nil, types.NewError(types.ErrCodeNotConfigured, "relayer config has no safe address")
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = types.ChainPolygon
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Client{
		http:         http.NewClient(baseURL, httpOpts),
		cfg:          cfg,
		signerAddr:   cfg.Signer.Address(),
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		log:          log,
	}, nil
}

// Address returns the signer address.
func (c *Client) Address() common.Address {
	return c.signerAddr
}

// SafeAddress returns the configured Safe proxy wallet.
func (c *Client) SafeAddress() common.Address {
	return c.cfg.SafeAddress
}

// builderHeaders signs the request with the builder HMAC scheme when
// builder credentials are configured.
func (c *Client) builderHeaders(method, pathWithQuery string, body string) map[string]string {
	if c.cfg.Builder == nil {
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	message := timestamp + method + pathWithQuery + body

	secret, err := base64.URLEncoding.DecodeString(c.cfg.Builder.Secret)
	if err != nil {
		secret, err = base64.StdEncoding.DecodeString(c.cfg.Builder.Secret)
		if err != nil {
			c.log.Warnf("relayer: cannot decode builder secret: %v", err)
			return nil
		}
	}

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(message))
	sig := base64.URLEncoding.EncodeToString(h.Sum(nil))

	return map[string]string{
		"POLY_BUILDER_API_KEY":    c.cfg.Builder.Key,
		"POLY_BUILDER_PASSPHRASE": c.cfg.Builder.Passphrase,
		"POLY_BUILDER_SIGNATURE":  sig,
		"POLY_BUILDER_TIMESTAMP":  timestamp,
	}
}

// get performs a signed GET against a path with an already encoded
// query string. The query is part of the HMAC message, so it is built
// by the caller rather than through request params.
func (c *Client) get(ctx context.Context, pathWithQuery string, out any) error {
	opt := &http.RequestOptions{Headers: c.builderHeaders("GET", pathWithQuery, "")}
	return c.http.DoRequest(ctx, "GET", pathWithQuery, opt, out)
}

// GetNonce fetches the next Safe nonce for the signer.
func (c *Client) GetNonce(ctx context.Context) (*big.Int, error) {
	path := endpointNonce + "?address=" + url.QueryEscape(c.signerAddr.Hex()) + "&type=" + walletTypeSafe

	var resp nonceResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	nonce, ok := new(big.Int).SetString(resp.Nonce, 10)
	if !ok {
		return nil, types.NewError(types.ErrCodeHTTP, "relayer returned invalid nonce %q", resp.Nonce)
	}
	return nonce, nil
}

// GetRelayerAddress returns the address the relayer submits from.
func (c *Client) GetRelayerAddress(ctx context.Context) (common.Address, error) {
	var resp addressResponse
	if err := c.get(ctx, endpointAddress, &resp); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(resp.Address), nil
}

// IsDeployed reports whether the Safe proxy wallet exists on chain.
func (c *Client) IsDeployed(ctx context.Context) (bool, error) {
	path := endpointDeployed + "?address=" + url.QueryEscape(c.cfg.SafeAddress.Hex()) + "&type=" + walletTypeSafe

	var resp deployedResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return false, err
	}
	return resp.Deployed, nil
}

// DeploySafe asks the relayer to deploy the Safe proxy wallet for the
// signer. Deploying an already deployed wallet is a relayer-side error.
func (c *Client) DeploySafe(ctx context.Context) (*SubmitResponse, error) {
	payload := map[string]string{
		"from": c.signerAddr.Hex(),
		"type": walletTypeSafe,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode deploy request")
	}

	var resp SubmitResponse
	opt := &http.RequestOptions{
		Headers: c.builderHeaders("POST", endpointDeploy, string(body)),
		Data:    string(body),
	}
	if err := c.http.DoRequest(ctx, "POST", endpointDeploy, opt, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteSafeTransactions signs a batch of calls as one Safe
// transaction and submits it. Batches of more than one call are packed
// through the MultiSend contract.
func (c *Client) ExecuteSafeTransactions(ctx context.Context, txns []SafeTransaction, metadata string) (*SubmitResponse, error) {
	return c.execute(ctx, walletTypeSafe, txns, metadata)
}

// ExecuteProxyTransactions is ExecuteSafeTransactions for accounts
// backed by the legacy proxy wallet factory.
func (c *Client) ExecuteProxyTransactions(ctx context.Context, txns []SafeTransaction, metadata string) (*SubmitResponse, error) {
	return c.execute(ctx, walletTypeProxy, txns, metadata)
}

func (c *Client) execute(ctx context.Context, walletType string, txns []SafeTransaction, metadata string) (*SubmitResponse, error) {
	if len(txns) == 0 {
		return nil, types.NewError(types.ErrCodeBadInput, "no transactions to execute")
	}

	nonce, err := c.GetNonce(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get nonce")
	}

	to, data, operation, err := encodeTransactions(txns)
	if err != nil {
		return nil, err
	}

	hash, err := safeTxHash(int64(c.cfg.ChainID), c.cfg.SafeAddress, to, data, operation, nonce)
	if err != nil {
		return nil, err
	}
	sig, err := signSafeTxHash(c.cfg.Signer, hash)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "sign safe transaction")
	}

	req := TransactionRequest{
		Type:        walletType,
		From:        c.signerAddr.Hex(),
		To:          to.Hex(),
		ProxyWallet: c.cfg.SafeAddress.Hex(),
		Data:        "0x" + common.Bytes2Hex(data),
		Nonce:       nonce.String(),
		Signature:   sig,
		SignatureParams: &SignatureParams{
			GasPrice:   "0",
			SafeTxnGas: "0",
			BaseGas:    "0",
		},
		Metadata: metadata,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode submit request")
	}
	c.log.Debugf("relayer: submitting %s transaction to=%s nonce=%s", walletType, req.To, req.Nonce)

	var resp SubmitResponse
	opt := &http.RequestOptions{
		Headers: c.builderHeaders("POST", endpointSubmit, string(body)),
		Data:    string(body),
	}
	if err := c.http.DoRequest(ctx, "POST", endpointSubmit, opt, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction looks up a submitted transaction by relayer id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*RelayerTransaction, error) {
	if id == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "transaction id is empty")
	}
	path := endpointTransaction + "?id=" + url.QueryEscape(id)

	var resp []RelayerTransaction
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, types.NewError(types.ErrCodeHTTP, "relayer has no transaction %s", id)
	}
	return &resp[0], nil
}

// GetTransactions lists transactions submitted for the Safe wallet.
func (c *Client) GetTransactions(ctx context.Context) ([]RelayerTransaction, error) {
	path := endpointTransactions + "?address=" + url.QueryEscape(c.cfg.SafeAddress.Hex())

	var resp []RelayerTransaction
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// WaitForTransaction polls the transaction state at a fixed interval
// until it reaches a terminal state or the poll timeout elapses. A
// failed transaction is returned along with an error.
func (c *Client) WaitForTransaction(ctx context.Context, id string) (*RelayerTransaction, error) {
	deadline := time.Now().Add(c.pollTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		tx, err := c.GetTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		if tx.Terminal() {
			if !tx.Succeeded() {
				return tx, types.NewError(types.ErrCodeHTTP, "relayer transaction %s failed: %s", id, tx.Error)
			}
			return tx, nil
		}

		if time.Now().After(deadline) {
			return tx, types.NewError(types.ErrCodeTimeout, "timed out waiting for relayer transaction %s", id)
		}
		select {
		case <-ctx.Done():
			return tx, types.WrapError(ctx.Err(), types.ErrCodeTimeout, "wait for relayer transaction %s", id)
		case <-ticker.C:
		}
	}
}

// String implements fmt.Stringer.
func (c *Client) String() string {
	return "relayer:" + c.http.BaseURL()
}
