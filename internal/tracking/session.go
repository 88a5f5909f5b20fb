package tracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"location-service/internal/location"
	"location-service/internal/store"

	"go.uber.org/zap"
)

const (
	// PollInterval is how often an active session refreshes the tracked
	// member's fix.
	PollInterval = 5 * time.Second

	// MaxPathPoints caps the retained path. Oldest points fall off first.
	MaxPathPoints = 20
)

// PathPoint is one sampled fix along a tracked member's path.
type PathPoint struct {
	Latitude  float64               `json:"latitude"`
	Longitude float64               `json:"longitude"`
	Timestamp int64                 `json:"timestamp"`
	Battery   location.BatteryLevel `json:"batteryPercentage"`
	SampledAt time.Time             `json:"sampledAt"`
}

// session follows one mobile number: an immediate fetch on start, then a
// fixed-interval refresh, each sample appended to a bounded path buffer.
type session struct {
	mobile   string
	store    *store.Client
	logger   *zap.SugaredLogger
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	points []*PathPoint
	online bool
	latest *location.CurrentLocation

	stop    chan struct{}
	done    chan struct{}
	stopped bool
}

func newSession(mobile string, storeClient *store.Client, interval time.Duration, logger *zap.SugaredLogger) *session {
	if interval <= 0 {
		interval = PollInterval
	}
	return &session{
		mobile:   mobile,
		store:    storeClient,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *session) start() {
	go s.run()
}

func (s *session) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fetch()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.fetch()
		}
	}
}

func (s *session) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	var raw json.RawMessage
	if err := s.store.Get(ctx, store.PathLocations+"/"+s.mobile, &raw); err != nil {
		s.logger.Errorf("tracking: fetch %s failed: %v", s.mobile, err)
		return
	}

	var loc *location.CurrentLocation
	if raw != nil {
		if err := json.Unmarshal(raw, &loc); err != nil {
			s.logger.Errorf("tracking: bad fix for %s: %v", s.mobile, err)
			return
		}
	}
	if loc == nil {
		return
	}

	// A fetch may outlive the session; never append after stop.
	select {
	case <-s.stop:
		return
	default:
	}

	s.record(loc)
}

func (s *session) record(loc *location.CurrentLocation) {
	now := s.now()
	point := &PathPoint{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timestamp: loc.UnixMillis(),
		Battery:   loc.BatteryPercentage,
		SampledAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, point)
	if len(s.points) > MaxPathPoints {
		s.points = s.points[len(s.points)-MaxPathPoints:]
	}
	s.latest = loc
	s.online = location.IsOnline(loc, now)
}

// halt stops the refresh loop and blocks until it has exited. Safe to call
// more than once.
func (s *session) halt() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

func (s *session) path() []*PathPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*PathPoint, len(s.points))
	copy(out, s.points)
	return out
}

func (s *session) status() (online bool, latest *location.CurrentLocation, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online, s.latest, len(s.points)
}
