package dashboard

import (
	"time"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
)

// Marker and badge colours used by the map page.
const (
	ColorGray   = "gray"
	ColorGreen  = "green"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorPurple = "purple"
	ColorBlue   = "blue"
)

// connectionLost is shown in place of a briefing when weather could not be fetched.
const connectionLost = "Connection Lost: unable to fetch weather data."

// Assessment is the view model for one selected point.
type Assessment struct {
	ID               string          `json:"id"`
	Lat              float64         `json:"lat"`
	Lon              float64         `json:"lon"`
	GeneratedAt      time.Time       `json:"generated_at"`
	WeatherAvailable bool            `json:"weather_available"`
	Status           string          `json:"status,omitempty"`
	Verdict          VerdictView     `json:"verdict"`
	Metrics          *MetricsView    `json:"metrics,omitempty"`
	Forecast         []ForecastPoint `json:"forecast"`
	Briefing         string          `json:"briefing,omitempty"`
}

// VerdictView is a verdict plus presentation fields.
type VerdictView struct {
	Label       domain.Label    `json:"label"`
	DisplayName string          `json:"display_name"`
	Severity    domain.Severity `json:"severity"`
	Color       string          `json:"color"`
	Explanation string          `json:"explanation"`
}

// MetricsView holds the headline current readings. Nil fields were not reported.
type MetricsView struct {
	TemperatureC        *float64 `json:"temperature_c"`
	WindSpeedKMH        *float64 `json:"wind_speed_kmh"`
	RainMM              *float64 `json:"rain_mm"`
	RelativeHumidityPct *float64 `json:"relative_humidity_pct"`
}

// ForecastPoint is one day of the chart series.
type ForecastPoint struct {
	Date               string  `json:"date"`
	MaxTempC           float64 `json:"max_temp_c"`
	PrecipitationSumMM float64 `json:"precipitation_sum_mm"`
}

// maxForecastDays bounds the chart to one week.
const maxForecastDays = 7

func newAssessment(event domain.AssessmentEvent, snapshot domain.WeatherSnapshot, briefing string) Assessment {
	a := Assessment{
		ID:               event.ID,
		Lat:              event.Lat,
		Lon:              event.Lon,
		GeneratedAt:      event.GeneratedAt,
		WeatherAvailable: event.WeatherAvailable,
		Verdict:          newVerdictView(event.Verdict),
		Forecast:         []ForecastPoint{},
		Briefing:         briefing,
	}
	if !event.WeatherAvailable {
		a.Status = connectionLost
	}
	if c := snapshot.Current; c != nil {
		a.Metrics = &MetricsView{
			TemperatureC:        c.TemperatureC,
			WindSpeedKMH:        c.WindSpeedKMH,
			RainMM:              c.RainMM,
			RelativeHumidityPct: c.RelativeHumidityPct,
		}
	}
	for i, d := range snapshot.Daily {
		if i == maxForecastDays {
			break
		}
		a.Forecast = append(a.Forecast, ForecastPoint(d))
	}
	return a
}

func newVerdictView(v domain.RiskVerdict) VerdictView {
	return VerdictView{
		Label:       v.Label,
		DisplayName: v.Label.DisplayName(),
		Severity:    v.Severity,
		Color:       verdictColor(v),
		Explanation: v.Explanation,
	}
}

func verdictColor(v domain.RiskVerdict) string {
	if v.Label == domain.LabelNoData {
		return ColorGray
	}
	switch v.Severity {
	case domain.SeveritySevere:
		return ColorRed
	case domain.SeverityCaution:
		return ColorOrange
	default:
		return ColorGreen
	}
}

// HazardLayers is the view model for the map's hazard overlays.
type HazardLayers struct {
	Fires  []FireMarker  `json:"fires"`
	Alerts []AlertMarker `json:"alerts"`
}

// FireMarker is a fire detection with its marker colour.
type FireMarker struct {
	domain.FireDetection
	Color string `json:"color"`
}

// AlertMarker is a disaster alert with its marker colour.
type AlertMarker struct {
	domain.DisasterAlert
	Color string `json:"color"`
}

func newHazardLayers(fires []domain.FireDetection, alerts []domain.DisasterAlert) HazardLayers {
	layers := HazardLayers{
		Fires:  make([]FireMarker, 0, len(fires)),
		Alerts: make([]AlertMarker, 0, len(alerts)),
	}
	for _, f := range fires {
		layers.Fires = append(layers.Fires, FireMarker{FireDetection: f, Color: ColorRed})
	}
	for _, a := range alerts {
		color := ColorBlue
		if a.IsCyclone() {
			color = ColorPurple
		}
		layers.Alerts = append(layers.Alerts, AlertMarker{DisasterAlert: a, Color: color})
	}
	return layers
}
