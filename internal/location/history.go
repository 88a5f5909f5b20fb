package location

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"location-service/internal/store"

	"go.uber.org/zap"
)

// HistoryStore reads and writes the date-partitioned location history:
// locationHistory/{mobile}/{YYYY-MM-DD}/{entryId}. Entries are append-only
// within a day; partitions are never merged.
type HistoryStore struct {
	store  *store.Client
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewHistoryStore(storeClient *store.Client, logger *zap.SugaredLogger) *HistoryStore {
	return &HistoryStore{
		store:  storeClient,
		logger: logger,
		now:    time.Now,
	}
}

// AppendEntry archives a fix under today's partition (local calendar date at
// call time) and overwrites the current-location record in the same call:
// history is additive, current location is last-write-wins.
func (h *HistoryStore) AppendEntry(ctx context.Context, mobile string, loc *CurrentLocation) (string, error) {
	now := h.now()
	date := now.Format(dateLayout)

	entry := &HistoryEntry{
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		Timestamp:         loc.UnixMillis(),
		BatteryPercentage: loc.BatteryPercentage,
		GpsStatus:         loc.GpsStatus,
		Date:              now.Format("2006-01-02 15:04:05"),
	}

	id, err := h.store.Push(ctx, historyPath(mobile)+"/"+date, entry)
	if err != nil {
		return "", fmt.Errorf("failed to store history entry: %w", err)
	}

	if err := h.store.Set(ctx, store.PathLocations+"/"+mobile, loc); err != nil {
		return "", fmt.Errorf("failed to update current location: %w", err)
	}

	return id, nil
}

// QueryRange watches the member's whole history subtree and delivers the
// flattened entries whose partition date falls within [startDate, endDate]
// (inclusive; lexicographic compare is safe on zero-padded dates), sorted
// by timestamp descending. onResult fires on the initial snapshot and again
// on every change until the returned cancel is called.
func (h *HistoryStore) QueryRange(mobile, startDate, endDate string, onResult func([]*HistoryEntry)) (cancel func()) {
	return h.store.Subscribe(historyPath(mobile), func(raw json.RawMessage) {
		onResult(filterRange(raw, startDate, endDate, h.logger))
	})
}

// QueryRangeOnce is the one-shot form of QueryRange.
func (h *HistoryStore) QueryRangeOnce(ctx context.Context, mobile, startDate, endDate string) ([]*HistoryEntry, error) {
	var raw json.RawMessage
	if err := h.store.Get(ctx, historyPath(mobile), &raw); err != nil {
		return nil, err
	}
	return filterRange(raw, startDate, endDate, h.logger), nil
}

// AvailableDates watches the member's history subtree and delivers its
// partition dates, newest first.
func (h *HistoryStore) AvailableDates(mobile string, onResult func([]string)) (cancel func()) {
	return h.store.Subscribe(historyPath(mobile), func(raw json.RawMessage) {
		partitions := make(map[string]json.RawMessage)
		if raw != nil {
			if err := json.Unmarshal(raw, &partitions); err != nil {
				if h.logger != nil {
					h.logger.Errorf("history: bad snapshot for %s: %v", mobile, err)
				}
				return
			}
		}
		dates := make([]string, 0, len(partitions))
		for date := range partitions {
			dates = append(dates, date)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
		onResult(dates)
	})
}

// CurrentLocation is the one-shot read of the member's latest fix, used as
// the degraded-mode fallback when a range query comes back empty.
func (h *HistoryStore) CurrentLocation(ctx context.Context, mobile string) (*CurrentLocation, error) {
	var loc *CurrentLocation
	if err := h.store.Get(ctx, store.PathLocations+"/"+mobile, &loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func historyPath(mobile string) string {
	return store.PathLocationHistory + "/" + mobile
}

func filterRange(raw json.RawMessage, startDate, endDate string, logger *zap.SugaredLogger) []*HistoryEntry {
	entries := []*HistoryEntry{}
	if raw == nil {
		return entries
	}

	partitions := make(map[string]map[string]*HistoryEntry)
	if err := json.Unmarshal(raw, &partitions); err != nil {
		if logger != nil {
			logger.Errorf("history: bad snapshot: %v", err)
		}
		return entries
	}

	for date, partition := range partitions {
		if date < startDate || date > endDate {
			continue
		}
		for id, entry := range partition {
			if entry == nil {
				continue
			}
			entry.ID = id
			// Entries written by AppendEntry carry a full human-readable
			// date; keep it and only fall back to the partition key.
			if entry.Date == "" {
				entry.Date = date
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}
