package location

import (
	"encoding/json"
	"fmt"
	"time"
)

// OnlineWindow is the fixed staleness policy: a member counts as online iff
// their last fix is younger than this.
const OnlineWindow = 24 * time.Hour

// dateLayout is the history partition key format. Zero-padded, so
// lexicographic order equals chronological order.
const dateLayout = "2006-01-02"

// BatteryLevel is a charge percentage, or "Unknown" when the device could
// not report one. It marshals as a bare number or the literal string.
type BatteryLevel struct {
	Known   bool
	Percent int
}

func BatteryOf(percent int) BatteryLevel {
	return BatteryLevel{Known: true, Percent: percent}
}

func (b BatteryLevel) MarshalJSON() ([]byte, error) {
	if !b.Known {
		return json.Marshal("Unknown")
	}
	return json.Marshal(b.Percent)
}

func (b *BatteryLevel) UnmarshalJSON(data []byte) error {
	var percent int
	if err := json.Unmarshal(data, &percent); err == nil {
		*b = BatteryLevel{Known: true, Percent: percent}
		return nil
	}
	*b = BatteryLevel{}
	return nil
}

func (b BatteryLevel) String() string {
	if !b.Known {
		return "Unknown"
	}
	return fmt.Sprintf("%d", b.Percent)
}

type DeviceInfo struct {
	UserAgent string `json:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Language  string `json:"language,omitempty"`
}

// CurrentLocation is the single latest fix for one mobile number. Writes
// overwrite; no history lives at this key. Older clients wrote the epoch
// under "timeStamp", so both spellings are carried.
type CurrentLocation struct {
	Latitude          float64      `json:"latitude"`
	Longitude         float64      `json:"longitude"`
	Accuracy          float64      `json:"accuracy,omitempty"`
	Timestamp         int64        `json:"timestamp,omitempty"`
	TimestampLegacy   int64        `json:"timeStamp,omitempty"`
	BatteryPercentage BatteryLevel `json:"batteryPercentage"`
	GpsStatus         string       `json:"gpsStatus,omitempty"`
	GpsInfo           string       `json:"gpsInfo,omitempty"`
	DeviceInfo        *DeviceInfo  `json:"deviceInfo,omitempty"`
	LastUpdated       string       `json:"lastUpdated,omitempty"`
}

// UnixMillis returns the fix epoch, tolerating records that only carry the
// legacy field.
func (l *CurrentLocation) UnixMillis() int64 {
	if l.Timestamp != 0 {
		return l.Timestamp
	}
	return l.TimestampLegacy
}

// IsOnline reports whether a fix at the given epoch is fresh at now. The
// window is strict: a fix exactly OnlineWindow old is offline.
func IsOnline(l *CurrentLocation, now time.Time) bool {
	if l == nil {
		return false
	}
	ts := l.UnixMillis()
	if ts == 0 {
		return false
	}
	return now.UnixMilli()-ts < OnlineWindow.Milliseconds()
}

// MapLink is the public map deep link for a fix.
func (l *CurrentLocation) MapLink() string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", l.Latitude, l.Longitude)
}

// HistoryEntry is one archived fix inside a day partition.
type HistoryEntry struct {
	ID                string       `json:"id,omitempty"`
	Latitude          float64      `json:"latitude"`
	Longitude         float64      `json:"longitude"`
	Timestamp         int64        `json:"timestamp"`
	BatteryPercentage BatteryLevel `json:"batteryPercentage"`
	GpsStatus         string       `json:"gpsStatus,omitempty"`
	Date              string       `json:"date"`
}
