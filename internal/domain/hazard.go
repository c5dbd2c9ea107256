package domain

import "strings"

// FireDetection is a single satellite thermal-anomaly detection.
type FireDetection struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Confidence   float64 `json:"confidence"` // 0–100
	Brightness   float64 `json:"brightness,omitempty"`
	FRP          float64 `json:"frp,omitempty"` // fire radiative power, MW
	AcquiredDate string  `json:"acquired_date,omitempty"`
	AcquiredTime string  `json:"acquired_time,omitempty"` // HHMM UTC
	Satellite    string  `json:"satellite,omitempty"`
}

// GDACS event type codes.
const (
	EventTypeTropicalCyclone = "TC"
	EventTypeEarthquake      = "EQ"
	EventTypeFlood           = "FL"
	EventTypeVolcano         = "VO"
	EventTypeDrought         = "DR"
	EventTypeWildfire        = "WF"
	EventTypeUnknown         = "Unknown"
)

// DisasterAlert is a geolocated alert from the global disaster feed.
type DisasterAlert struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	EventType   string  `json:"event_type"`
	AlertLevel  string  `json:"alert_level,omitempty"` // Green, Orange or Red
	Link        string  `json:"link,omitempty"`
}

// IsCyclone reports whether the alert describes a tropical cyclone.
func (a DisasterAlert) IsCyclone() bool {
	return a.EventType == EventTypeTropicalCyclone || strings.Contains(a.Title, "Cyclone")
}
