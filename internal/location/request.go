package location

type SubmitLocationRequest struct {
	Latitude          float64     `json:"latitude"`
	Longitude         float64     `json:"longitude"`
	Accuracy          float64     `json:"accuracy,omitempty"`
	Timestamp         int64       `json:"timestamp,omitempty"`
	BatteryPercentage *int        `json:"battery_percentage,omitempty"`
	GpsStatus         string      `json:"gps_status,omitempty"`
	DeviceInfo        *DeviceInfo `json:"device_info,omitempty"`
}
