package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"order-ledger/internal/core/config"
	"order-ledger/internal/core/logger"
	"order-ledger/internal/core/metrics"
	"order-ledger/internal/features/orders/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errNotConnected = errors.New("push channel not connected")

// envelope is the frame exchanged on the push channel.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketChannel implements ports.PushChannel over a websocket that reconnects on failure.
type WebSocketChannel struct {
	url            string
	header         http.Header
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	log            *zap.Logger

	handlersMu sync.RWMutex
	handlers   map[string]func(json.RawMessage)

	connMu sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWebSocketChannel creates a channel for the configured push endpoint. The bearer token of
// the order API is reused for the handshake.
func NewWebSocketChannel(cfg config.PushConfig, token string) *WebSocketChannel {
	delay := time.Duration(cfg.ReconnectSeconds) * time.Second
	if delay <= 0 {
		delay = 3 * time.Second
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &WebSocketChannel{
		url:            cfg.URL,
		header:         header,
		reconnectDelay: delay,
		dialer:         websocket.DefaultDialer,
		log:            logger.Named("push"),
		handlers:       make(map[string]func(json.RawMessage)),
	}
}

// On registers the handler for an event. Handlers run on the read goroutine in arrival order.
func (c *WebSocketChannel) On(event string, handler func(json.RawMessage)) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[event] = handler
}

// Connect starts the connection loop. It returns once the first dial attempt finished;
// a failed attempt is retried in the background.
func (c *WebSocketChannel) Connect(ctx context.Context) error {
	c.connMu.Lock()
	if c.cancel != nil {
		c.connMu.Unlock()
		return fmt.Errorf("push channel already connected")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.connMu.Unlock()

	first := make(chan error, 1)
	go c.run(runCtx, first)

	select {
	case err := <-first:
		if err != nil {
			c.log.Warn("Push channel unavailable, retrying in background", zap.String("url", c.url), zap.Error(err))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Emit sends an event to the server.
func (c *WebSocketChannel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return &domain.NetworkError{Op: "emit " + event, Err: errNotConnected}
	}
	if err := c.conn.WriteJSON(envelope{Event: event, Data: data}); err != nil {
		return &domain.NetworkError{Op: "emit " + event, Err: err}
	}
	return nil
}

// Disconnect stops the connection loop and closes the socket.
func (c *WebSocketChannel) Disconnect() error {
	c.connMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.connMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	// A dial finishing after cancel is refused by attach, so any conn seen here is the last one.
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn != nil {
		conn.Close()
	}
	<-done
	return nil
}

func (c *WebSocketChannel) run(ctx context.Context, first chan<- error) {
	defer close(c.done)

	attempt := 0
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
		if attempt == 0 {
			first <- err
		}
		attempt++

		if err == nil {
			if !c.attach(ctx, conn) {
				conn.Close()
				return
			}
			c.log.Info("Push channel connected", zap.String("url", c.url))
			c.readLoop(conn)
			c.setConn(nil)
			conn.Close()
		}

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.log.Debug("Push channel dial failed", zap.Error(err))
		}
		metrics.PushReconnect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *WebSocketChannel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.log.Warn("Push channel read failed", zap.Error(err))
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Warn("Malformed push frame", zap.Error(err))
			continue
		}

		c.handlersMu.RLock()
		handler := c.handlers[env.Event]
		c.handlersMu.RUnlock()
		if handler == nil {
			c.log.Debug("No handler for push event", zap.String("event", env.Event))
			continue
		}
		handler(env.Data)
	}
}

// attach installs conn unless the channel is already stopping.
func (c *WebSocketChannel) attach(ctx context.Context, conn *websocket.Conn) bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	c.conn = conn
	return true
}

func (c *WebSocketChannel) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.conn = conn
}
