package domain

import (
	"fmt"
	"strconv"
)

// Thresholds are the trigger values of the risk rule table. Each rule fires
// only when the measurement is strictly greater than its threshold.
type Thresholds struct {
	SevereCycloneWindKMH  float64
	CycloneWarningWindKMH float64
	FloodForecastMM       float64
	FlashFloodRainMM      float64
	FlashFloodSoilMoist   float64
	HeavyRainMM           float64
	ExtremeHeatC          float64
	HeatAlertC            float64
	AvalancheSnowCM       float64
}

// DefaultThresholds is the operational rule table. FloodForecastMM and
// FlashFloodSoilMoist are uncited and change only with domain-owner sign-off.
var DefaultThresholds = Thresholds{
	SevereCycloneWindKMH:  89,
	CycloneWarningWindKMH: 62,
	FloodForecastMM:       100,
	FlashFloodRainMM:      50,
	FlashFloodSoilMoist:   0.4,
	HeavyRainMM:           20,
	ExtremeHeatC:          45,
	HeatAlertC:            40,
	AvalancheSnowCM:       5,
}

// Assess classifies a snapshot with [DefaultThresholds].
func Assess(s WeatherSnapshot) RiskVerdict {
	return DefaultThresholds.Assess(s)
}

// Assess classifies a snapshot against the rule table. Rules are checked in
// priority order (wind, flood, heat, snow) and the first match wins, so a
// single verdict is returned even when several thresholds are exceeded.
func (t Thresholds) Assess(s WeatherSnapshot) RiskVerdict {
	if !s.HasCurrent() {
		return RiskVerdict{Label: LabelNoData, Severity: SeverityNone, Explanation: "Local weather unavailable."}
	}
	c := s.Current

	wind := c.WindSpeed()
	switch {
	case wind > t.SevereCycloneWindKMH:
		return verdict(LabelSevereCyclone, SeveritySevere, "Dangerous wind speeds of %s km/h detected.", wind)
	case wind > t.CycloneWarningWindKMH:
		return verdict(LabelCycloneWarning, SeverityCaution, "High winds of %s km/h. Structural risk present.", wind)
	}

	rain := c.Rain()
	if maxPrecip := s.MaxPrecipitationMM(); maxPrecip > t.FloodForecastMM {
		return verdict(LabelFloodForecast, SeveritySevere, "Forecast models predict %s mm of rain in a single day.", maxPrecip)
	}
	switch {
	case rain > t.FlashFloodRainMM && c.SoilMoisture() > t.FlashFloodSoilMoist:
		return verdict(LabelFlashFloodRisk, SeveritySevere, "Heavy rain (%s mm) on saturated soil. Flooding imminent.", rain)
	case rain > t.HeavyRainMM:
		return verdict(LabelHeavyRainfall, SeverityCaution, "Current rainfall: %s mm.", rain)
	}

	temp := c.Temperature()
	switch {
	case temp > t.ExtremeHeatC:
		return verdict(LabelExtremeHeatwave, SeveritySevere, "Temperature is %s°C. Critical danger.", temp)
	case temp > t.HeatAlertC:
		return verdict(LabelHeatAlert, SeverityCaution, "Temperature is %s°C. Stay indoors.", temp)
	}

	if snow := c.Snowfall(); snow > t.AvalancheSnowCM {
		return verdict(LabelAvalancheRisk, SeverityCaution, "Fresh snowfall of %s cm detected.", snow)
	}

	return RiskVerdict{Label: LabelNormal, Severity: SeverityNone, Explanation: "No immediate meteorological threats detected."}
}

func verdict(label Label, severity Severity, format string, value float64) RiskVerdict {
	return RiskVerdict{
		Label:       label,
		Severity:    severity,
		Explanation: fmt.Sprintf(format, FormatMeasurement(value)),
	}
}

// FormatMeasurement renders a value with the fewest digits that round-trip,
// so 95 prints as "95" and 89.01 as "89.01".
func FormatMeasurement(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
