package domain

import (
	"fmt"
	"strings"
)

// Label names a risk verdict.
type Label string

const (
	LabelNoData          Label = "NO_DATA"
	LabelSevereCyclone   Label = "SEVERE_CYCLONE"
	LabelCycloneWarning  Label = "CYCLONE_WARNING"
	LabelFloodForecast   Label = "FLOOD_FORECAST"
	LabelFlashFloodRisk  Label = "FLASH_FLOOD_RISK"
	LabelHeavyRainfall   Label = "HEAVY_RAINFALL"
	LabelExtremeHeatwave Label = "EXTREME_HEATWAVE"
	LabelHeatAlert       Label = "HEAT_ALERT"
	LabelAvalancheRisk   Label = "AVALANCHE_RISK"
	LabelNormal          Label = "NORMAL"
)

// DisplayName returns the label as shown to operators, e.g. "SEVERE CYCLONE".
func (l Label) DisplayName() string {
	switch l {
	case LabelNoData:
		return "No Data"
	case LabelNormal:
		return "Normal Conditions"
	default:
		return strings.ReplaceAll(string(l), "_", " ")
	}
}

// Severity is an ordered urgency tier: none < caution < severe.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityCaution
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityCaution:
		return "caution"
	case SeveritySevere:
		return "severe"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityNone, SeverityCaution, SeveritySevere:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
}

// UnmarshalText decodes a lowercase severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*s = SeverityNone
	case "caution":
		*s = SeverityCaution
	case "severe":
		*s = SeveritySevere
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// RiskVerdict is the classifier output: one actionable label, its tier, and a
// justification citing the triggering measurement.
type RiskVerdict struct {
	Label       Label    `json:"label"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}
