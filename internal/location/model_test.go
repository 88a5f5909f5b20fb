package location

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBatteryLevelJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want BatteryLevel
		out  string
	}{
		{"number", `87`, BatteryOf(87), `87`},
		{"zero", `0`, BatteryOf(0), `0`},
		{"unknown string", `"Unknown"`, BatteryLevel{}, `"Unknown"`},
		{"garbage string", `"n/a"`, BatteryLevel{}, `"Unknown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got BatteryLevel
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("unmarshal %s = %+v, want %+v", tt.in, got, tt.want)
			}

			raw, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(raw) != tt.out {
				t.Fatalf("marshal = %s, want %s", raw, tt.out)
			}
		})
	}
}

func TestIsOnlineWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh fix", time.Minute, true},
		{"just inside window", OnlineWindow - time.Millisecond, true},
		{"exactly at window", OnlineWindow, false},
		{"just outside window", OnlineWindow + time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loc := &CurrentLocation{Timestamp: now.Add(-tt.age).UnixMilli()}
			if got := IsOnline(loc, now); got != tt.want {
				t.Fatalf("IsOnline(age %v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestIsOnlineDegenerate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if IsOnline(nil, now) {
		t.Fatal("nil location should be offline")
	}
	if IsOnline(&CurrentLocation{}, now) {
		t.Fatal("location with no timestamp should be offline")
	}
}

func TestUnixMillisLegacyField(t *testing.T) {
	t.Parallel()

	loc := &CurrentLocation{TimestampLegacy: 1625406878594}
	if got := loc.UnixMillis(); got != 1625406878594 {
		t.Fatalf("UnixMillis = %d, want legacy value", got)
	}

	loc.Timestamp = 1700000000000
	if got := loc.UnixMillis(); got != 1700000000000 {
		t.Fatalf("UnixMillis = %d, canonical field should win", got)
	}
}

func TestMapLink(t *testing.T) {
	t.Parallel()

	loc := &CurrentLocation{Latitude: 18.19731, Longitude: 79.39382}
	want := "https://www.google.com/maps/search/?api=1&query=18.19731,79.39382"
	if got := loc.MapLink(); got != want {
		t.Fatalf("MapLink = %s, want %s", got, want)
	}
}
