package domain

import "time"

// AssessmentEvent records one completed point assessment for downstream consumers.
type AssessmentEvent struct {
	ID               string      `json:"id"`
	Lat              float64     `json:"lat"`
	Lon              float64     `json:"lon"`
	WeatherAvailable bool        `json:"weather_available"`
	Verdict          RiskVerdict `json:"verdict"`
	GeneratedAt      time.Time   `json:"generated_at"`
}

// NewAssessmentEvent stamps a verdict with the current UTC time.
func NewAssessmentEvent(id string, lat, lon float64, weatherAvailable bool, v RiskVerdict) AssessmentEvent {
	return AssessmentEvent{
		ID:               id,
		Lat:              lat,
		Lon:              lon,
		WeatherAvailable: weatherAvailable,
		Verdict:          v,
		GeneratedAt:      clock.Now().UTC(),
	}
}
