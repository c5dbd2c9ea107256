package domain

// WeatherSnapshot is a single point-in-time weather read plus its daily forecast.
// The zero value has no current conditions and classifies as NO_DATA.
type WeatherSnapshot struct {
	Current *CurrentConditions `json:"current,omitempty"`
	Daily   []DailyForecast    `json:"daily,omitempty"`
}

// CurrentConditions holds the current-hour observation. Every field is optional;
// the accessor methods return 0 for a missing value.
type CurrentConditions struct {
	TemperatureC         *float64 `json:"temperature_c,omitempty"`
	RainMM               *float64 `json:"rain_mm,omitempty"`
	WindSpeedKMH         *float64 `json:"wind_speed_kmh,omitempty"`
	SoilMoistureFraction *float64 `json:"soil_moisture_fraction,omitempty"`
	SnowfallCM           *float64 `json:"snowfall_cm,omitempty"`
	RelativeHumidityPct  *float64 `json:"relative_humidity_pct,omitempty"`
}

// DailyForecast is one day of the forward-looking forecast.
type DailyForecast struct {
	Date               string  `json:"date"` // YYYY-MM-DD in the location's timezone
	MaxTempC           float64 `json:"max_temp_c"`
	PrecipitationSumMM float64 `json:"precipitation_sum_mm"`
}

// HasCurrent reports whether the snapshot carries current conditions.
func (s WeatherSnapshot) HasCurrent() bool { return s.Current != nil }

// MaxPrecipitationMM returns the largest daily precipitation sum in the
// forecast. An empty forecast yields 0.
func (s WeatherSnapshot) MaxPrecipitationMM() float64 {
	if len(s.Daily) == 0 {
		return 0
	}
	maxPrecip := s.Daily[0].PrecipitationSumMM
	for _, d := range s.Daily[1:] {
		if d.PrecipitationSumMM > maxPrecip {
			maxPrecip = d.PrecipitationSumMM
		}
	}
	return maxPrecip
}

func (c *CurrentConditions) Temperature() float64  { return valueOrZero(c.TemperatureC) }
func (c *CurrentConditions) Rain() float64         { return valueOrZero(c.RainMM) }
func (c *CurrentConditions) WindSpeed() float64    { return valueOrZero(c.WindSpeedKMH) }
func (c *CurrentConditions) SoilMoisture() float64 { return valueOrZero(c.SoilMoistureFraction) }
func (c *CurrentConditions) Snowfall() float64     { return valueOrZero(c.SnowfallCM) }
func (c *CurrentConditions) Humidity() float64     { return valueOrZero(c.RelativeHumidityPct) }

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
