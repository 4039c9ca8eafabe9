// Package transport connects the canvas state engine to the drawing-agent
// server: a WebSocket client for the inbound event stream and outbound
// commands, and an HTTP client for the stroke fetch side channel.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/easel/pkg/canvas"
	"github.com/odvcencio/easel/pkg/observability"
	"github.com/odvcencio/easel/pkg/protocol"
	"github.com/odvcencio/easel/pkg/telemetry"
)

const writeTimeout = 10 * time.Second

// Client maintains the WebSocket connection to the agent server, feeding
// decoded events into the router one at a time so actions reach the
// reducer in arrival order.
type Client struct {
	url       string
	router    *canvas.Router
	logger    *observability.Logger
	tracer    *telemetry.Service
	reconnect time.Duration
	sessionID string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient builds a client for the given WebSocket URL. logger and tracer
// may be nil.
func NewClient(url string, router *canvas.Router, logger *observability.Logger, tracer *telemetry.Service, reconnect time.Duration) *Client {
	if reconnect <= 0 {
		reconnect = time.Second
	}
	sessionID := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
	if logger != nil {
		logger = logger.WithSession(sessionID)
	}
	return &Client{
		url:       url,
		router:    router,
		logger:    logger,
		tracer:    tracer,
		reconnect: reconnect,
		sessionID: sessionID,
	}
}

// SessionID returns the client session identifier.
func (c *Client) SessionID() string { return c.sessionID }

// Run connects and pumps events until ctx is cancelled, reconnecting
// after the configured delay when the connection drops.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.logger != nil {
				c.logger.Warn("event stream disconnected",
					slog.String("error", err.Error()),
					slog.Duration("reconnect_in", c.reconnect),
				)
			}
		}
		observability.TransportReconnects.Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(c.reconnect)):
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	var span trace.Span
	if c.tracer != nil {
		var sctx context.Context
		sctx, span = c.tracer.Start(ctx, "transport.connect",
			trace.WithAttributes(
				attribute.String("session_id", c.sessionID),
				attribute.String("url", c.url),
			),
		)
		defer span.End()
		ctx = sctx
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	if c.logger != nil {
		c.logger.Info("event stream connected", slog.String("url", c.url))
	}

	// Close the socket when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handleFrame(data)
	}
}

// handleFrame decodes and routes one inbound frame. Decode failures and
// unknown event types never fail the stream.
func (c *Client) handleFrame(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownEvent) {
			observability.EventsDropped.WithLabelValues("unknown").Inc()
		} else {
			observability.TransportDecodeErrors.Inc()
		}
		if c.logger != nil {
			c.logger.Debug("dropping undecodable frame", slog.String("error", err.Error()))
		}
		return
	}
	c.router.Route(ev)
}

// Send encodes and writes one command on the current connection.
func (c *Client) Send(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("transport: not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// jitter spreads reconnect attempts so clients don't stampede.
func jitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d/4+1)))
}
