package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(srv.URL, 2*time.Second, nil)
}

func TestResolve_LongFormatsComponents(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("zoom") != "18" {
			t.Errorf("Expected zoom=18, got %s", req.URL.Query().Get("zoom"))
		}
		if req.URL.Query().Get("addressdetails") != "1" {
			t.Errorf("Expected addressdetails=1")
		}
		w.Write([]byte(`{
			"display_name": "full display name",
			"address": {
				"house_number": "12",
				"road": "MG Road",
				"suburb": "Hanamkonda",
				"town": "Warangal",
				"state": "Telangana",
				"country": "India"
			}
		}`))
	})

	got := r.Resolve(context.Background(), 18.1973, 79.3938, false)
	want := "12 MG Road, Hanamkonda, Warangal, Telangana, India"
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolve_LongFallsBackToDisplayName(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"display_name": "Somewhere, India", "address": {}}`))
	})

	if got := r.Resolve(context.Background(), 18.1973, 79.3938, false); got != "Somewhere, India" {
		t.Errorf("Resolve = %q, want display_name fallback", got)
	}
}

func TestResolve_LongNetworkFailureFallsBackToCoordinates(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	got := r.Resolve(context.Background(), 18.19731, 79.39382, false)
	if got != "18.197310, 79.393820" {
		t.Errorf("Resolve = %q, want coordinate fallback", got)
	}
}

func TestResolve_ShortUsesRoadAndCity(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("zoom") != "16" {
			t.Errorf("Expected zoom=16, got %s", req.URL.Query().Get("zoom"))
		}
		w.Write([]byte(`{
			"display_name": "irrelevant",
			"address": {"road": "MG Road", "village": "Kazipet", "country": "India"}
		}`))
	})

	if got := r.Resolve(context.Background(), 18.1973, 79.3938, true); got != "MG Road, Kazipet" {
		t.Errorf("Resolve = %q, want \"MG Road, Kazipet\"", got)
	}
}

func TestResolve_ShortFailureFallsBackToLiteral(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`not json`))
	})

	if got := r.Resolve(context.Background(), 18.1973, 79.3938, true); got != "Location" {
		t.Errorf("Resolve = %q, want \"Location\"", got)
	}
}

func TestCachedAddress_ResolvesOncePerBucket(t *testing.T) {
	t.Parallel()

	var calls int32
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"display_name": "d", "address": {"road": "MG Road", "city": "Warangal"}}`))
	})

	svc := NewGeocodeService(NewCache(100), r)
	ctx := context.Background()

	first := svc.CachedAddress(ctx, 18.19731, 79.39379, true)
	second := svc.CachedAddress(ctx, 18.19734, 79.39381, true)

	if first != second {
		t.Errorf("Bucketed lookups disagree: %q vs %q", first, second)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected 1 upstream call, got %d", n)
	}
}

func TestCachedAddress_DeduplicatesConcurrentLookups(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.Write([]byte(`{"display_name": "d", "address": {"road": "MG Road"}}`))
	})

	svc := NewGeocodeService(NewCache(100), r)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.CachedAddress(ctx, 18.1973, 79.3938, true)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected 1 upstream call for concurrent same-key lookups, got %d", n)
	}
	for i, got := range results {
		if got != "MG Road" {
			t.Errorf("result[%d] = %q, want \"MG Road\"", i, got)
		}
	}
}
