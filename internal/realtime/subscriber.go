package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/scamdunk/pkg/logger"
)

// Reconnect settings
const (
	reconnectDelay    = 1 * time.Second
	maxReconnectDelay = 1 * time.Minute
)

// Subscriber follows a /ws/schemes stream and reconnects with exponential
// backoff when the connection drops.
type Subscriber struct {
	url    string
	logger *logger.Logger
	dialer *websocket.Dialer
}

// NewSubscriber creates a subscriber for a ws:// or wss:// URL
func NewSubscriber(url string, log *logger.Logger) *Subscriber {
	return &Subscriber{url: url, logger: log, dialer: websocket.DefaultDialer}
}

// Stream calls fn for every event until ctx is done or fn returns an error
func (s *Subscriber) Stream(ctx context.Context, fn func(Event) error) error {
	delay := reconnectDelay
	for {
		err := s.session(ctx, fn, func() { delay = reconnectDelay })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var herr handlerError
		if errors.As(err, &herr) {
			return herr.err
		}

		s.logger.WithError(err).WithField("delay", delay.String()).Warn("Scheme stream disconnected, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

type handlerError struct{ err error }

func (e handlerError) Error() string { return e.err.Error() }

// session runs one connection. connected is called once the dial succeeds.
func (s *Subscriber) session(ctx context.Context, fn func(Event) error, connected func()) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()
	connected()

	// Unblock ReadMessage on cancel
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
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil {
			s.logger.WithError(err).Warn("Skipping malformed stream message")
			continue
		}
		if err := fn(ev); err != nil {
			return handlerError{err: err}
		}
	}
}
