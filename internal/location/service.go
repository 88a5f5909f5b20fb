package location

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type LocationService interface {
	Submit(ctx context.Context, mobile string, req *SubmitLocationRequest) error
	View(familyName string) map[string]*MemberLocation
	HistoryRange(ctx context.Context, mobile, startDate, endDate string) ([]*HistoryEntry, error)
	AvailableDates(ctx context.Context, mobile string) ([]string, error)
}

type locationService struct {
	history    *HistoryStore
	aggregator *Aggregator
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewLocationService(history *HistoryStore, aggregator *Aggregator, logger *zap.SugaredLogger) LocationService {
	return &locationService{
		history:    history,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates and records a fix: appended to today's history partition
// and written over the member's current location.
func (s *locationService) Submit(ctx context.Context, mobile string, req *SubmitLocationRequest) error {

	if mobile == "" {
		return errors.New("mobile number is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return errors.New("coordinates out of range")
	}

	now := s.now()
	ts := req.Timestamp
	if ts == 0 {
		ts = now.UnixMilli()
	}

	battery := BatteryLevel{}
	if req.BatteryPercentage != nil {
		if *req.BatteryPercentage < 0 || *req.BatteryPercentage > 100 {
			return errors.New("battery percentage out of range")
		}
		battery = BatteryOf(*req.BatteryPercentage)
	}

	gpsStatus := req.GpsStatus
	if gpsStatus == "" {
		gpsStatus = "Enabled"
	}

	loc := &CurrentLocation{
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Accuracy:          req.Accuracy,
		Timestamp:         ts,
		TimestampLegacy:   ts,
		BatteryPercentage: battery,
		GpsStatus:         gpsStatus,
		GpsInfo:           "GPS Enabled..!",
		DeviceInfo:        req.DeviceInfo,
		LastUpdated:       now.UTC().Format(time.RFC3339),
	}

	if _, err := s.history.AppendEntry(ctx, mobile, loc); err != nil {
		return err
	}

	s.logger.Infof("Stored location for %s at %.6f,%.6f", mobile, loc.Latitude, loc.Longitude)
	return nil
}

func (s *locationService) View(familyName string) map[string]*MemberLocation {
	return s.aggregator.View(familyName)
}

// HistoryRange runs the live range query and returns its first result. An
// empty range degrades to the member's current location tagged with today's
// date; that is a deliberate fallback, not an error.
func (s *locationService) HistoryRange(ctx context.Context, mobile, startDate, endDate string) ([]*HistoryEntry, error) {

	if mobile == "" {
		return nil, errors.New("mobile number is required")
	}

	results := make(chan []*HistoryEntry, 1)
	cancel := s.history.QueryRange(mobile, startDate, endDate, func(entries []*HistoryEntry) {
		select {
		case results <- entries:
		default:
		}
	})
	defer cancel()

	var entries []*HistoryEntry
	select {
	case entries = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if len(entries) > 0 {
		return entries, nil
	}

	loc, err := s.history.CurrentLocation(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return []*HistoryEntry{}, nil
	}

	return []*HistoryEntry{{
		ID:                mobile + "_current",
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		Timestamp:         loc.UnixMillis(),
		BatteryPercentage: loc.BatteryPercentage,
		GpsStatus:         loc.GpsStatus,
		Date:              s.now().Format(dateLayout),
	}}, nil
}

func (s *locationService) AvailableDates(ctx context.Context, mobile string) ([]string, error) {

	if mobile == "" {
		return nil, errors.New("mobile number is required")
	}

	results := make(chan []string, 1)
	cancel := s.history.AvailableDates(mobile, func(dates []string) {
		select {
		case results <- dates:
		default:
		}
	})
	defer cancel()

	select {
	case dates := <-results:
		return dates, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
