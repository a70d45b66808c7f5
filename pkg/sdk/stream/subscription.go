package stream

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

// Options are per-subscription lifecycle hooks. All hooks are optional.
type Options struct {
	// OnOpen fires once the subscribe message has been accepted by the
	// transport, before the first update.
	OnOpen func()
	// OnError receives socket and decode errors. A socket error also ends
	// the subscription (OnClose follows); decode errors do not.
	OnError func(error)
	// OnClose fires exactly once when the subscription ends, whether by
	// Unsubscribe or socket failure.
	OnClose func()
}

// Option mutates Options.
type Option func(*Options)

func WithOnOpen(fn func()) Option       { return func(o *Options) { o.OnOpen = fn } }
func WithOnError(fn func(error)) Option { return func(o *Options) { o.OnError = fn } }
func WithOnClose(fn func()) Option      { return func(o *Options) { o.OnClose = fn } }

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscription is a single asset's live orderbook feed. It owns one
// connection, one read goroutine and one ping goroutine.
type Subscription struct {
	id      string
	assetID string

	conn    *websocket.Conn
	writeMu sync.Mutex

	// mu gates update dispatch, the decode-error hook and the closed
	// flag. Unsubscribe takes it before marking closed, so once
	// Unsubscribe returns no further callbacks can run. Consequently
	// Unsubscribe must not be called from inside the update handler or
	// the OnError hook.
	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}

	onUpdate UpdateHandler
	hooks    *Options

	log *logger.Logger
}

func newSubscription(conn *websocket.Conn, assetID string, onUpdate UpdateHandler, hooks *Options, log *logger.Logger) *Subscription {
	return &Subscription{
		id:       uuid.NewString(),
		assetID:  assetID,
		conn:     conn,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		onUpdate: onUpdate,
		hooks:    hooks,
		log:      log,
	}
}

// ID is the subscription's unique identifier, used in log fields.
func (s *Subscription) ID() string {
	return s.id
}

// AssetID returns the subscribed asset.
func (s *Subscription) AssetID() string {
	return s.assetID
}

// Done is closed when the read loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.doneCh
}

// open transitions to the open state and starts the loops.
func (s *Subscription) open() {
	s.log.WithField("sub", s.id).Debugf("subscribed to %s", s.assetID)
	if s.hooks.OnOpen != nil {
		s.hooks.OnOpen()
	}
	go s.readLoop()
	go s.pingLoop()
}

// Unsubscribe ends the subscription. It is idempotent and safe to call
// concurrently; once it returns, the update handler will not be invoked
// again.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.teardown()
}

// teardown closes the socket and fires OnClose exactly once.
func (s *Subscription) teardown() {
	s.closeOnce.Do(func() {
		close(s.stopCh)

		s.writeMu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		s.conn.Close()

		s.log.WithField("sub", s.id).Debugf("closed subscription for %s", s.assetID)
		if s.hooks.OnClose != nil {
			s.hooks.OnClose()
		}
	})
}

// fail handles a fatal socket error: report it, then close. No reconnect
// here, the caller owns that decision.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if wasClosed {
		// Unsubscribe already ran; the read error is just the socket
		// shutting down.
		return
	}

	if s.hooks.OnError != nil && !isExpectedClose(err) {
		s.hooks.OnError(types.WrapError(err, types.ErrCodeStream, "connection lost for %s", s.assetID))
	}
	s.teardown()
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func (s *Subscription) readLoop() {
	defer close(s.doneCh)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		s.handleMessage(message)
	}
}

func (s *Subscription) handleMessage(data []byte) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return
	}
	// Heartbeat replies and other plain-text frames.
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return
	}

	updates, err := types.ParseOrderbookFrames(trimmed)
	if err != nil {
		s.log.WithField("sub", s.id).Debugf("undecodable frame: %v", err)
		// Same gate as dispatch: no hook may run once Unsubscribe returned.
		s.mu.Lock()
		if !s.closed && s.hooks.OnError != nil {
			s.hooks.OnError(err)
		}
		s.mu.Unlock()
		return
	}

	s.dispatch(updates)
}

// dispatch invokes the handler under mu so close and delivery cannot
// interleave.
func (s *Subscription) dispatch(updates []types.OrderbookUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, u := range updates {
		s.onUpdate(u)
	}
}

func (s *Subscription) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := s.conn.WriteMessage(websocket.TextMessage, []byte("PING"))
			s.writeMu.Unlock()
			if err != nil {
				s.fail(err)
				return
			}
		}
	}
}
