// Package data fetches market metadata from the gamma REST API.
package data

import (
	"context"
	"fmt"
	gohttp "net/http"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

const (
	endpointMarkets = "/markets"
)

type Client struct {
	http *http.Client
	log  *logger.Logger
}

// NewClient builds a market data client rooted at baseURL.
func NewClient(baseURL string, opts *http.Options, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		http: http.NewClient(baseURL, opts),
		log:  log,
	}
}

// GetMarkets returns all markets that are currently active and not closed.
func (c *Client) GetMarkets(ctx context.Context) ([]types.Market, error) {
	var markets []types.Market
	err := c.http.DoRequest(ctx, gohttp.MethodGet, endpointMarkets, &http.RequestOptions{
		Params: map[string]string{
			"active": "true",
			"closed": "false",
		},
	}, &markets)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("fetched %d active markets", len(markets))
	return markets, nil
}

// GetMarket returns a single market by its gamma id.
func (c *Client) GetMarket(ctx context.Context, id string) (*types.Market, error) {
	if id == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "market id is empty")
	}
	var market types.Market
	endpoint := fmt.Sprintf("%s/%s", endpointMarkets, id)
	if err := c.http.DoRequest(ctx, gohttp.MethodGet, endpoint, nil, &market); err != nil {
		return nil, err
	}
	return &market, nil
}

// GetMarketBySlug looks a market up by its URL slug. The gamma API answers
// slug queries with an array; an empty array means no such market.
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*types.Market, error) {
	if slug == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "market slug is empty")
	}
	var markets []types.Market
	err := c.http.DoRequest(ctx, gohttp.MethodGet, endpointMarkets, &http.RequestOptions{
		Params: map[string]string{
			"slug":   slug,
			"closed": "false",
		},
	}, &markets)
	if err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, types.NewError(types.ErrCodeHTTP, "market not found: %s", slug)
	}
	return &markets[0], nil
}
