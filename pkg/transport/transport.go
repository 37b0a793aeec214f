// Package transport is the editor's WebSocket link to the relay. A Conn
// keeps itself connected: when a read fails it redials with exponential
// backoff until its context ends, and Send fails in the meantime so the
// session queues what it could not write.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/ha1tch/netui/pkg/logging"
)

// ErrNotConnected is returned by Send while the connection is down.
var ErrNotConnected = errors.New("transport: not connected")

// Options configures a Conn.
type Options struct {
	Logger logging.Logger
	Header http.Header
	Dialer *websocket.Dialer

	// Reconnect backoff. Zero values use the backoff package defaults.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Buffer is the capacity of the Frames channel.
	Buffer int

	// OnReconnect runs after every successful redial.
	OnReconnect func()
}

// Conn is a self-healing WebSocket connection.
type Conn struct {
	url    string
	opts   Options
	log    logging.Logger
	cancel context.CancelFunc
	done   chan struct{}
	frames chan []byte

	mu sync.Mutex
	ws *websocket.Conn
}

// Dial connects to url and starts reading. The first connection attempt is
// not retried; its error is returned.
func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	ws, err := dial(ctx, opts, url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		url:    url,
		opts:   opts,
		log:    opts.Logger.With(logging.String("url", url)),
		cancel: cancel,
		done:   make(chan struct{}),
		frames: make(chan []byte, opts.Buffer),
		ws:     ws,
	}
	go c.run(ctx)
	return c, nil
}

func dial(ctx context.Context, opts Options, url string) (*websocket.Conn, error) {
	ws, resp, err := opts.Dialer.DialContext(ctx, url, opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return ws, nil
}

// Frames returns inbound frames. It is closed once the Conn stops.
func (c *Conn) Frames() <-chan []byte { return c.frames }

// Send writes one text frame.
func (c *Conn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return ErrNotConnected
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Connected reports whether a connection is currently open.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// Close stops reconnecting, closes the socket and waits for the reader.
func (c *Conn) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// closeSocket unblocks the reader once the context ends.
func (c *Conn) closeSocket() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.ws.Close()
}

func (c *Conn) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.frames)
	stop := context.AfterFunc(ctx, c.closeSocket)
	defer stop()

	for {
		c.read(ctx)
		c.drop()
		if ctx.Err() != nil {
			return
		}
		if err := c.reconnect(ctx); err != nil {
			return
		}
		if ctx.Err() != nil {
			// Closed while the redial was landing.
			c.drop()
			return
		}
		if c.opts.OnReconnect != nil {
			c.opts.OnReconnect()
		}
	}
}

func (c *Conn) read(ctx context.Context) {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn(ctx, "websocket read failed", logging.Err(err))
			}
			return
		}
		select {
		case c.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
}

func (c *Conn) reconnect(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	if c.opts.InitialInterval > 0 {
		b.InitialInterval = c.opts.InitialInterval
	}
	if c.opts.MaxInterval > 0 {
		b.MaxInterval = c.opts.MaxInterval
	}

	op := func() error {
		ws, err := dial(ctx, c.opts, c.url)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.ws = ws
		c.mu.Unlock()
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug(ctx, "reconnect failed", logging.Err(err), logging.String("retry_in", wait.String()))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return err
	}
	c.log.Info(ctx, "reconnected")
	return nil
}
