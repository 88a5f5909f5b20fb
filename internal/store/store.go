package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Top-level paths of the family tracker database.
const (
	PathFamilyMembers   = "familyMembersList"
	PathFamilies        = "familyList"
	PathLocations       = "locationList"
	PathLocationHistory = "locationHistory"
	PathRegistrations   = "registrations"
)

// Backend is the raw key/value document store underneath the client. Paths
// are slash-separated ("locationList/+919999999999"); a Get on a missing
// path returns a nil document, never an error.
type Backend interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Set(ctx context.Context, path string, value interface{}) error
	Push(ctx context.Context, path string, value interface{}) (string, error)
	Delete(ctx context.Context, path string) error
}

// Client wraps a Backend with subscription semantics. The Admin SDK exposes
// no push listener, so Subscribe watches a path by polling and diffing the
// raw document, which preserves the onValue contract consumers expect: the
// callback fires once with the current value and again on every change.
type Client struct {
	backend  Backend
	interval time.Duration
	logger   *zap.SugaredLogger
}

func NewClient(backend Backend, interval time.Duration, logger *zap.SugaredLogger) *Client {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Client{
		backend:  backend,
		interval: interval,
		logger:   logger,
	}
}

func (c *Client) Get(ctx context.Context, path string, v interface{}) error {
	raw, err := c.backend.Get(ctx, path)
	if err != nil {
		return err
	}
	if isNullSnapshot(raw) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (c *Client) Set(ctx context.Context, path string, value interface{}) error {
	return c.backend.Set(ctx, path, value)
}

func (c *Client) Push(ctx context.Context, path string, value interface{}) (string, error) {
	return c.backend.Push(ctx, path, value)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.backend.Delete(ctx, path)
}

// Subscribe watches path until the returned cancel function is called. A nil
// snapshot means the path is absent; consumers treat it as an empty
// collection. Cancel is idempotent and blocks until the watcher goroutine
// has exited, so no callback fires after it returns.
func (c *Client) Subscribe(path string, onSnapshot func(json.RawMessage)) (cancel func()) {
	stop := make(chan struct{})
	done := make(chan struct{})

	go c.watch(path, onSnapshot, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}
}

func (c *Client) watch(path string, onSnapshot func(json.RawMessage), stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var last json.RawMessage
	fired := false

	poll := func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.interval)
		defer cancel()

		raw, err := c.backend.Get(ctx, path)
		if err != nil {
			if c.logger != nil {
				c.logger.Errorf("store: poll %s failed: %v", path, err)
			}
			return
		}
		if isNullSnapshot(raw) {
			raw = nil
		}
		if fired && bytes.Equal(last, raw) {
			return
		}
		last = raw
		fired = true
		onSnapshot(raw)
	}

	poll()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			poll()
		}
	}
}

func isNullSnapshot(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
