package tracking

import (
	"sync"
	"time"

	"location-service/internal/location"
	"location-service/internal/store"

	"go.uber.org/zap"
)

// Status is a point-in-time report on the tracking state machine.
type Status struct {
	Tracking bool                      `json:"tracking"`
	Mobile   string                    `json:"mobile,omitempty"`
	Online   bool                      `json:"online"`
	Latest   *location.CurrentLocation `json:"latest,omitempty"`
	Points   int                       `json:"points"`
}

// Manager holds at most one active tracking session. Starting a new one
// stops the previous session first and discards its path.
type Manager struct {
	store    *store.Client
	logger   *zap.SugaredLogger
	interval time.Duration

	mu     sync.Mutex
	active *session
}

func NewManager(storeClient *store.Client, interval time.Duration, logger *zap.SugaredLogger) *Manager {
	if interval <= 0 {
		interval = PollInterval
	}
	return &Manager{
		store:    storeClient,
		logger:   logger,
		interval: interval,
	}
}

// Start begins tracking mobile. Any running session is torn down first;
// this blocks until its goroutine has exited, so the old session can never
// append to the new path.
func (m *Manager) Start(mobile string) {
	m.mu.Lock()
	previous := m.active
	m.active = nil
	m.mu.Unlock()

	if previous != nil {
		previous.halt()
	}

	next := newSession(mobile, m.store, m.interval, m.logger)

	m.mu.Lock()
	m.active = next
	m.mu.Unlock()

	next.start()
	m.logger.Infof("Tracking started for %s", mobile)
}

// Stop ends the active session, if any.
func (m *Manager) Stop() {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.mu.Unlock()

	if active == nil {
		return
	}
	active.halt()
	m.logger.Infof("Tracking stopped for %s", active.mobile)
}

// Path returns the sampled path of the active session, oldest point first.
func (m *Manager) Path() []*PathPoint {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		return []*PathPoint{}
	}
	return active.path()
}

func (m *Manager) Status() *Status {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		return &Status{}
	}
	online, latest, count := active.status()
	return &Status{
		Tracking: true,
		Mobile:   active.mobile,
		Online:   online,
		Latest:   latest,
		Points:   count,
	}
}
