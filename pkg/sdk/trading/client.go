// Package trading is the CLOB trading client: signed order placement,
// cancellation and open order queries, plus API key management.
package trading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gohttp "net/http"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/ratelimit"
	"github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
	"github.com/betbot/gosdk/pkg/signer"
)

// The CLOB allows 150 requests per 10 seconds per API key.
const (
	requestBurst      = 150
	requestsPerSecond = 15
)

// CLOB REST endpoints.
const (
	endpointCreateAPIKey  = "/auth/api-key"
	endpointDeriveAPIKey  = "/auth/derive-api-key"
	endpointPostOrder     = "/order"
	endpointCancelOrder   = "/order"
	endpointCancelOrders  = "/orders"
	endpointGetOrder      = "/data/order/"
	endpointGetOpenOrders = "/data/orders"
)

// Config is the trading configuration consumed at construction.
type Config struct {
	ChainID       types.Chain
	Signer        signer.Signer
	Creds         *types.APICreds
	FunderAddress string
	SignatureType types.SignatureType

	// Builder, when set, attaches builder attribution headers to order
	// placement.
	Builder *types.BuilderConfig
}

type Client struct {
	http    *http.Client
	cfg     *Config
	builder *orderBuilder
	limiter *ratelimit.TokenBucket
	log     *logger.Logger
}

// NewClient validates cfg and builds the trading client.
func NewClient(baseURL string, cfg *Config, httpOpts *http.Options, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "trading config is nil")
	}
	if cfg.Signer == nil {
		return nil, types.NewError(types.ErrCodeNotConfigured, "trading signer is not set")
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = types.ChainPolygon
	}
	if _, err := GetContractConfig(cfg.ChainID); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		http:    http.NewClient(baseURL, httpOpts),
		cfg:     cfg,
		builder: newOrderBuilder(cfg.Signer, cfg.ChainID, cfg.SignatureType, cfg.FunderAddress),
		limiter: ratelimit.NewTokenBucket(requestBurst, requestsPerSecond),
		log:     log,
	}, nil
}

// throttle blocks until the request quota allows another call.
func (c *Client) throttle(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return types.WrapError(err, types.ErrCodeTimeout, "rate limit wait")
	}
	return nil
}

// canL2Auth reports whether API credentials are available for L2 endpoints.
func (c *Client) canL2Auth() error {
	if c.cfg.Creds == nil || c.cfg.Creds.Key == "" {
		return types.NewError(types.ErrCodeNotConfigured, "api credentials required; call CreateOrDeriveAPIKey first or set Creds")
	}
	return nil
}

// PlaceOrder signs and submits an order. The order type defaults to GTC.
func (c *Client) PlaceOrder(ctx context.Context, params *types.PlaceOrderParams) (*types.OrderResponse, error) {
	if err := c.canL2Auth(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, types.NewError(types.ErrCodeBadInput, "order params are nil")
	}

	signedOrder, err := c.builder.BuildOrder(params)
	if err != nil {
		return nil, err
	}

	orderType := params.OrderType
	if orderType == "" {
		orderType = types.OrderTypeGTC
	}
	payload := types.NewOrder{
		Order:     *signedOrder,
		Owner:     c.cfg.Creds.Key,
		OrderType: orderType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeBadInput, "encode order payload")
	}
	bodyStr := string(body)

	headers, err := l2Headers(c.cfg.Signer, c.cfg.Creds, "POST", endpointPostOrder, &bodyStr)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l2 headers")
	}
	if c.cfg.Builder != nil {
		bh, err := builderHeaders(c.cfg.Builder, "POST", endpointPostOrder, &bodyStr)
		if err != nil {
			return nil, types.WrapError(err, types.ErrCodeSigning, "builder headers")
		}
		for k, v := range bh {
			headers[k] = v
		}
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	var resp types.OrderResponse
	err = c.http.DoRequest(ctx, gohttp.MethodPost, endpointPostOrder, &http.RequestOptions{
		Headers: headers,
		Data:    bodyStr,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.log.WithField("orderID", resp.OrderID).Debugf("placed %s %s order", params.Side, orderType)
	return &resp, nil
}

// CancelOrder cancels one order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	if err := c.canL2Auth(); err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "order id is empty")
	}

	headers, err := l2Headers(c.cfg.Signer, c.cfg.Creds, "DELETE", endpointCancelOrder, nil)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l2 headers")
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	var resp types.OrderResponse
	err = c.http.DoRequest(ctx, gohttp.MethodDelete, endpointCancelOrder, &http.RequestOptions{
		Headers: headers,
		Params:  map[string]string{"orderID": orderID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelOrders cancels a batch of orders.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string) (*types.CancelOrdersResponse, error) {
	if err := c.canL2Auth(); err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return nil, types.NewError(types.ErrCodeBadInput, "no order ids")
	}

	body, err := json.Marshal(orderIDs)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeBadInput, "encode order ids")
	}
	bodyStr := string(body)

	headers, err := l2Headers(c.cfg.Signer, c.cfg.Creds, "DELETE", endpointCancelOrders, &bodyStr)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l2 headers")
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	var resp types.CancelOrdersResponse
	err = c.http.DoRequest(ctx, gohttp.MethodDelete, endpointCancelOrders, &http.RequestOptions{
		Headers: headers,
		Data:    bodyStr,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOpenOrders returns resting orders, optionally filtered.
func (c *Client) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) ([]types.OpenOrder, error) {
	if err := c.canL2Auth(); err != nil {
		return nil, err
	}

	query := make(map[string]string)
	if params != nil {
		if params.ID != nil {
			query["id"] = *params.ID
		}
		if params.Market != nil {
			query["market"] = *params.Market
		}
		if params.AssetID != nil {
			query["asset_id"] = *params.AssetID
		}
	}

	headers, err := l2Headers(c.cfg.Signer, c.cfg.Creds, "GET", endpointGetOpenOrders, nil)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l2 headers")
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	var resp types.OpenOrdersAPIResponse
	err = c.http.DoRequest(ctx, gohttp.MethodGet, endpointGetOpenOrders, &http.RequestOptions{
		Headers: headers,
		Params:  query,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.OpenOrder, error) {
	if err := c.canL2Auth(); err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "order id is empty")
	}

	endpoint := endpointGetOrder + orderID
	headers, err := l2Headers(c.cfg.Signer, c.cfg.Creds, "GET", endpoint, nil)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l2 headers")
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	var order types.OpenOrder
	err = c.http.DoRequest(ctx, gohttp.MethodGet, endpoint, &http.RequestOptions{
		Headers: headers,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrDeriveAPIKey derives existing API credentials for the signer, or
// creates fresh ones when none exist yet (the derive endpoint answers 400
// in that case).
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.APICreds, error) {
	headers, err := l1Headers(c.cfg.Signer, c.cfg.ChainID, nonce)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeSigning, "l1 headers")
	}

	var raw types.APICredsRaw
	err = c.http.DoRequest(ctx, gohttp.MethodGet, endpointDeriveAPIKey, &http.RequestOptions{
		Headers: headers,
	}, &raw)
	if err == nil {
		return &types.APICreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
	}

	var httpErr *types.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != gohttp.StatusBadRequest {
		return nil, err
	}

	// No key to derive yet; create one.
	raw = types.APICredsRaw{}
	err = c.http.DoRequest(ctx, gohttp.MethodPost, endpointCreateAPIKey, &http.RequestOptions{
		Headers: headers,
		Data:    map[string]any{},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return &types.APICreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
}

// Address returns the trading signer address.
func (c *Client) Address() string {
	return c.cfg.Signer.Address().Hex()
}

// String implements fmt.Stringer.
func (c *Client) String() string {
	return fmt.Sprintf("trading.Client{chain=%d, addr=%s}", c.cfg.ChainID, c.Address())
}
