package tracking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"location-service/internal/location"
	"location-service/internal/store"

	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestManager(t *testing.T) (*Manager, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend()
	client := store.NewClient(backend, 10*time.Millisecond, testLogger())
	manager := NewManager(client, 10*time.Millisecond, testLogger())
	t.Cleanup(manager.Stop)
	return manager, backend
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPathBufferKeepsNewestTwenty(t *testing.T) {
	t.Parallel()

	s := newSession("+911111111111", nil, time.Hour, testLogger())

	for i := 1; i <= 25; i++ {
		s.record(&location.CurrentLocation{
			Latitude:  float64(i),
			Longitude: float64(i),
			Timestamp: int64(i),
		})
	}

	points := s.path()
	if len(points) != MaxPathPoints {
		t.Fatalf("buffer holds %d points, want %d", len(points), MaxPathPoints)
	}
	// Appends 1-5 evicted; 6-25 retained in order.
	for i, p := range points {
		want := int64(i + 6)
		if p.Timestamp != want {
			t.Fatalf("points[%d].Timestamp = %d, want %d", i, p.Timestamp, want)
		}
	}
}

func TestSessionSamplesImmediatelyAndOnTicks(t *testing.T) {
	t.Parallel()

	manager, backend := newTestManager(t)
	mobile := "+912222222222"

	seed := func(i int) {
		loc := &location.CurrentLocation{
			Latitude:  float64(i),
			Longitude: float64(i),
			Timestamp: time.Now().UnixMilli() + int64(i),
		}
		if err := backend.Set(context.Background(), store.PathLocations+"/"+mobile, loc); err != nil {
			t.Fatalf("seed fix: %v", err)
		}
	}
	seed(1)

	manager.Start(mobile)

	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 1
	})

	seed(2)
	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 2
	})

	status := manager.Status()
	if !status.Tracking || status.Mobile != mobile {
		t.Fatalf("status = %+v, want active session for %s", status, mobile)
	}
	if !status.Online {
		t.Fatal("fresh fix should report online")
	}
}

func TestSessionOfflineForStaleFix(t *testing.T) {
	t.Parallel()

	manager, backend := newTestManager(t)
	mobile := "+913333333333"

	stale := &location.CurrentLocation{
		Latitude:  1,
		Longitude: 2,
		Timestamp: time.Now().Add(-location.OnlineWindow - time.Hour).UnixMilli(),
	}
	if err := backend.Set(context.Background(), store.PathLocations+"/"+mobile, stale); err != nil {
		t.Fatalf("seed fix: %v", err)
	}

	manager.Start(mobile)

	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 1
	})

	if manager.Status().Online {
		t.Fatal("day-old fix should report offline")
	}
}

func TestStartReplacesPreviousSession(t *testing.T) {
	t.Parallel()

	manager, backend := newTestManager(t)

	first := "+914444444444"
	second := "+915555555555"
	for i, mobile := range []string{first, second} {
		loc := &location.CurrentLocation{Latitude: float64(i), Longitude: float64(i), Timestamp: time.Now().UnixMilli()}
		if err := backend.Set(context.Background(), store.PathLocations+"/"+mobile, loc); err != nil {
			t.Fatalf("seed fix: %v", err)
		}
	}

	manager.Start(first)
	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 1
	})

	manager.Start(second)

	status := manager.Status()
	if status.Mobile != second {
		t.Fatalf("active mobile = %s, want %s", status.Mobile, second)
	}

	// The first session's buffer is gone; the new path only carries the
	// second member's fixes.
	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 1
	})
	for _, p := range manager.Path() {
		if p.Latitude != 1 {
			t.Fatalf("old session's point leaked into new path: %+v", p)
		}
	}
}

func TestStopIsDeterministicAndIdempotent(t *testing.T) {
	t.Parallel()

	manager, backend := newTestManager(t)
	mobile := "+916666666666"

	loc := &location.CurrentLocation{Latitude: 1, Longitude: 2, Timestamp: time.Now().UnixMilli()}
	if err := backend.Set(context.Background(), store.PathLocations+"/"+mobile, loc); err != nil {
		t.Fatalf("seed fix: %v", err)
	}

	manager.Start(mobile)
	waitFor(t, time.Second, func() bool {
		return len(manager.Path()) >= 1
	})

	manager.Stop()
	manager.Stop()

	status := manager.Status()
	if status.Tracking {
		t.Fatalf("status still tracking after stop: %+v", status)
	}
	if len(manager.Path()) != 0 {
		t.Fatal("stopped manager should expose an empty path")
	}
}

func TestIdleManagerStatus(t *testing.T) {
	t.Parallel()

	manager, _ := newTestManager(t)

	status := manager.Status()
	if status.Tracking || status.Mobile != "" || status.Points != 0 {
		t.Fatalf("idle status = %+v", status)
	}
	if got := manager.Path(); len(got) != 0 {
		t.Fatalf("idle path has %d points", len(got))
	}
}

func TestSessionSkipsMissingFix(t *testing.T) {
	t.Parallel()

	manager, _ := newTestManager(t)
	manager.Start(fmt.Sprintf("+91%010d", 7))

	time.Sleep(50 * time.Millisecond)
	if got := manager.Path(); len(got) != 0 {
		t.Fatalf("path has %d points for a member with no fix", len(got))
	}
}
