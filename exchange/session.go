package exchange

import (
	"errors"
	"fmt"

	"github.com/cmi-trading/flightbot/domain"
)

// Handler receives market events on the session's listener goroutine. A
// slow handler delays consumption of subsequent events; there is no
// queueing between the stream and the handler.
type Handler interface {
	OnOrderBook(book *domain.OrderBook)
	OnTrades(trades []domain.Trade)
}

// ErrAlreadyRunning is returned by Start when a listener is already
// attached. This is a usage error, not a connectivity one.
var ErrAlreadyRunning = errors.New("session already running: call Stop before starting again")

// Session composes the REST facade with the market stream listener.
// Exactly one listener may be attached at a time.
type Session struct {
	api    *SyncAPI
	stream *StreamClient
}

func NewSession(api *SyncAPI) *Session {
	return &Session{api: api}
}

// API exposes the authenticated REST operations to strategy code.
func (s *Session) API() *SyncAPI {
	return s.api
}

// Start authenticates if needed, attaches a listener and begins streaming
// market events into the handler. It returns once the listener goroutine
// has been launched, not once it has connected.
func (s *Session) Start(handler Handler) error {
	if s.stream != nil {
		return ErrAlreadyRunning
	}

	token, err := s.api.Token()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	s.stream = NewStreamClient(
		s.api.baseURL+"/api/market/stream",
		token,
		handler.OnOrderBook,
		func(trade domain.Trade) {
			handler.OnTrades([]domain.Trade{trade})
		},
	)
	s.stream.Start()

	return nil
}

// Stop closes the listener and blocks until its goroutine has fully
// exited, then detaches it so Start may be called again.
func (s *Session) Stop() {
	if s.stream == nil {
		return
	}

	s.stream.Close()
	<-s.stream.Done()
	s.stream = nil
}
