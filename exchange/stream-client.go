package exchange

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/cmi-trading/flightbot/domain"
	promclient "github.com/cmi-trading/flightbot/infrastructure/prometheus"
)

const connectTimeout = 30 * time.Second

var errStreamClosed = errors.New("stream client closed")

// StreamClient owns the single push connection to the market stream. Its
// read loop runs on one dedicated goroutine: connect, decode named events,
// invoke the callbacks synchronously, and restart the connection on any
// failure until Close is called. Callbacks block further event
// consumption until they return.
type StreamClient struct {
	url    string
	bearer string

	onOrderBook func(*domain.OrderBook)
	onTrade     func(domain.Trade)

	client *http.Client

	// reconnect pacing, overridable in tests
	backoffMin time.Duration
	backoffMax time.Duration

	mu      sync.Mutex
	closed  bool
	cancel  context.CancelFunc
	closing chan struct{}
	done    chan struct{}
}

func NewStreamClient(url, bearer string, onOrderBook func(*domain.OrderBook), onTrade func(domain.Trade)) *StreamClient {
	return &StreamClient{
		url:         url,
		bearer:      bearer,
		onOrderBook: onOrderBook,
		onTrade:     onTrade,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
				ResponseHeaderTimeout: connectTimeout,
			},
		},
		backoffMin: 250 * time.Millisecond,
		backoffMax: 5 * time.Second,
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the read loop goroutine. It returns as soon as the
// goroutine is running, not once the connection is established.
func (c *StreamClient) Start() {
	go c.run()
}

// Close terminates the current connection attempt or read and prevents
// any further reconnects. It is idempotent and safe to call concurrently
// with an in-flight reconnect; an already running callback is not
// interrupted.
func (c *StreamClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.closing)
	if c.cancel != nil {
		c.cancel()
	}
}

// Done is closed once the read loop goroutine has fully exited.
func (c *StreamClient) Done() <-chan struct{} {
	return c.done
}

func (c *StreamClient) run() {
	defer close(c.done)

	b := &backoff.Backoff{
		Min:    c.backoffMin,
		Max:    c.backoffMax,
		Factor: 2,
		Jitter: true,
	}

	for {
		err := c.stream(b)
		if c.isClosed() {
			return
		}

		promclient.StreamReconnectsCounter.Inc()
		logger.Printf("market stream failed: %s; reconnecting", err)

		select {
		case <-time.After(b.Duration()):
		case <-c.closing:
			return
		}
	}
}

// stream opens one connection and reads it until it fails or the client
// is closed. It never returns nil.
func (c *StreamClient) stream(b *backoff.Backoff) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errStreamClosed
	}
	c.cancel = cancel
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Authorization", c.bearer)
	req.Header.Set("Accept", "text/event-stream; charset=utf-8")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open market stream: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("market stream returned status %d", res.StatusCode)
	}

	b.Reset()
	logger.Println("connected to the market stream")

	return c.readEvents(res.Body)
}

// readEvents consumes the event stream frame by frame: "event:" names the
// kind, "data:" carries the JSON payload, a blank line dispatches.
func (c *StreamClient) readEvents(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if data != "" {
				if err := c.dispatch(event, data); err != nil {
					return err
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error while reading from market stream: %w", err)
	}
	return errors.New("market stream ended")
}

func (c *StreamClient) dispatch(event, data string) error {
	switch event {
	case "order":
		raw := &domain.OrderBookEvent{}
		if err := json.Unmarshal([]byte(data), raw); err != nil {
			return fmt.Errorf("failed to decode order event: %w", err)
		}

		book, err := domain.NewOrderBook(raw)
		if err != nil {
			return fmt.Errorf("failed to normalize order event: %w", err)
		}

		c.onOrderBook(book)

	case "trade":
		trade := domain.Trade{}
		if err := json.Unmarshal([]byte(data), &trade); err != nil {
			return fmt.Errorf("failed to decode trade event: %w", err)
		}

		c.onTrade(trade)
	}

	return nil
}

func (c *StreamClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
