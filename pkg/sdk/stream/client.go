// Package stream delivers live orderbook updates over the market WebSocket
// channel. Each subscription owns its own connection and goroutines; a
// dropped connection is reported through the error hook and never retried
// internally, the caller decides whether to resubscribe.
package stream

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

const (
	// The server expects a text PING every 10s and answers with PONG.
	pingInterval = 10 * time.Second

	handshakeTimeout = 15 * time.Second
	writeTimeout     = 10 * time.Second

	readBufferSize  = 4096
	writeBufferSize = 4096
)

// UpdateHandler receives orderbook updates. Handlers for one subscription
// are invoked sequentially, in socket order.
type UpdateHandler func(types.OrderbookUpdate)

// Client dials market-channel subscriptions.
type Client struct {
	wsURL    string
	proxyURL string
	log      *logger.Logger
}

// NewClient builds a stream client for wsURL.
func NewClient(wsURL string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{wsURL: wsURL, log: log}
}

// SetProxy routes the WebSocket dial through an HTTP proxy.
func (c *Client) SetProxy(proxyURL string) {
	c.proxyURL = proxyURL
}

// Subscribe opens a connection, sends the market subscribe message for
// assetID and starts delivering updates to onUpdate. Dial or subscribe
// failures are returned synchronously; later socket errors go through the
// OnError hook.
func (c *Client) Subscribe(assetID string, onUpdate UpdateHandler, opts ...Option) (*Subscription, error) {
	if assetID == "" {
		return nil, types.NewError(types.ErrCodeBadInput, "asset id is empty")
	}
	if onUpdate == nil {
		return nil, types.NewError(types.ErrCodeBadInput, "update handler is nil")
	}

	options := newOptions(opts)

	dialer := websocket.Dialer{
		ReadBufferSize:   readBufferSize,
		WriteBufferSize:  writeBufferSize,
		HandshakeTimeout: handshakeTimeout,
	}
	if c.proxyURL != "" {
		proxyURL, err := url.Parse(c.proxyURL)
		if err != nil {
			return nil, types.WrapError(err, types.ErrCodeBadInput, "invalid proxy url")
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	conn, _, err := dialer.Dial(c.wsURL, nil)
	if err != nil {
		return nil, types.WrapError(err, types.ErrCodeStream, "dial %s", c.wsURL)
	}

	sub := newSubscription(conn, assetID, onUpdate, options, c.log)

	if err := sub.sendSubscribe(); err != nil {
		conn.Close()
		return nil, types.WrapError(err, types.ErrCodeStream, "subscribe %s", assetID)
	}

	sub.open()
	return sub, nil
}

// subscribeMessage is the market channel subscribe payload.
type subscribeMessage struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

func (s *Subscription) sendSubscribe() error {
	msg := subscribeMessage{Type: "market", AssetsIDs: []string{s.assetID}}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		return errors.Wrap(err, "write subscribe message")
	}
	return nil
}
