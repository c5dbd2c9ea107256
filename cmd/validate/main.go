// Command validate checks the risk rule table against a scenario file and
// against boundary and priority cases generated from the operational
// thresholds. Run it before and after any threshold change to get a
// pass/fail report for sign-off.
//
// Usage:
//
//	go run ./cmd/validate -scenarios cmd/validate/testdata/scenarios.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
)

// scenario is one expected classification.
type scenario struct {
	Name     string                 `json:"name"`
	Snapshot domain.WeatherSnapshot `json:"snapshot"`
	Label    domain.Label           `json:"label"`
	Severity domain.Severity        `json:"severity"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	checks int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// expect classifies s and records a mismatch against want.
func (p *phase) expect(name string, s domain.WeatherSnapshot, want domain.Label, t domain.Thresholds) domain.RiskVerdict {
	p.checks++
	got := t.Assess(s)
	if got.Label != want {
		p.errorf("%s: got %s, want %s", name, got.Label, want)
	}
	return got
}

func main() {
	scenariosPath := flag.String("scenarios", "", "path to a JSON array of expected classifications")
	flag.Parse()

	if *scenariosPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*scenariosPath, domain.DefaultThresholds, os.Stdout))
}

func run(scenariosPath string, t domain.Thresholds, out io.Writer) int {
	fmt.Fprintln(out, "=== Risk Rule Validation ===")
	fmt.Fprintln(out)

	scenarios, err := loadScenarios(scenariosPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load scenarios: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateScenarios(scenarios, t),
		validateBoundaries(t),
		validatePriority(t),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-30s %3d checks  %s\n", p.name, p.checks, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadScenarios(path string) ([]scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenarios []scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}
	return scenarios, nil
}

// ── Phases ──

func validateScenarios(scenarios []scenario, t domain.Thresholds) *phase {
	p := &phase{name: "Scenario verdicts"}
	for _, sc := range scenarios {
		got := p.expect(sc.Name, sc.Snapshot, sc.Label, t)
		if got.Severity != sc.Severity {
			p.errorf("%s: severity %s, want %s", sc.Name, got.Severity, sc.Severity)
		}
		if got.Explanation == "" {
			p.errorf("%s: empty explanation", sc.Name)
		}
	}
	return p
}

// nudge is how far past a threshold a reading must be to trip it.
const nudge = 0.1

func validateBoundaries(t domain.Thresholds) *phase {
	p := &phase{name: "Threshold boundaries"}

	cases := []struct {
		name    string
		at      domain.WeatherSnapshot
		atLabel domain.Label
		above   domain.WeatherSnapshot
		tripped domain.Label
	}{
		{"severe cyclone wind", wind(t.SevereCycloneWindKMH), domain.LabelCycloneWarning,
			wind(t.SevereCycloneWindKMH + nudge), domain.LabelSevereCyclone},
		{"cyclone warning wind", wind(t.CycloneWarningWindKMH), domain.LabelNormal,
			wind(t.CycloneWarningWindKMH + nudge), domain.LabelCycloneWarning},
		{"flood forecast", forecast(t.FloodForecastMM), domain.LabelNormal,
			forecast(t.FloodForecastMM + nudge), domain.LabelFloodForecast},
		{"flash flood rain", rainOnSoil(t.FlashFloodRainMM, t.FlashFloodSoilMoist+nudge), domain.LabelHeavyRainfall,
			rainOnSoil(t.FlashFloodRainMM+nudge, t.FlashFloodSoilMoist+nudge), domain.LabelFlashFloodRisk},
		{"flash flood soil", rainOnSoil(t.FlashFloodRainMM+nudge, t.FlashFloodSoilMoist), domain.LabelHeavyRainfall,
			rainOnSoil(t.FlashFloodRainMM+nudge, t.FlashFloodSoilMoist+nudge), domain.LabelFlashFloodRisk},
		{"heavy rain", rainOnSoil(t.HeavyRainMM, 0), domain.LabelNormal,
			rainOnSoil(t.HeavyRainMM+nudge, 0), domain.LabelHeavyRainfall},
		{"extreme heat", temp(t.ExtremeHeatC), domain.LabelHeatAlert,
			temp(t.ExtremeHeatC + nudge), domain.LabelExtremeHeatwave},
		{"heat alert", temp(t.HeatAlertC), domain.LabelNormal,
			temp(t.HeatAlertC + nudge), domain.LabelHeatAlert},
		{"avalanche snow", snow(t.AvalancheSnowCM), domain.LabelNormal,
			snow(t.AvalancheSnowCM + nudge), domain.LabelAvalancheRisk},
	}

	for _, c := range cases {
		p.expect(c.name+" at threshold", c.at, c.atLabel, t)
		p.expect(c.name+" above threshold", c.above, c.tripped, t)
	}
	return p
}

func validatePriority(t domain.Thresholds) *phase {
	p := &phase{name: "Rule priority"}

	everything := domain.WeatherSnapshot{
		Current: &domain.CurrentConditions{
			WindSpeedKMH:         domain.Float(t.SevereCycloneWindKMH + nudge),
			RainMM:               domain.Float(t.FlashFloodRainMM + nudge),
			SoilMoistureFraction: domain.Float(t.FlashFloodSoilMoist + nudge),
			TemperatureC:         domain.Float(t.ExtremeHeatC + nudge),
			SnowfallCM:           domain.Float(t.AvalancheSnowCM + nudge),
		},
		Daily: []domain.DailyForecast{{PrecipitationSumMM: t.FloodForecastMM + nudge}},
	}
	p.expect("wind outranks all", everything, domain.LabelSevereCyclone, t)

	noWind := clone(everything)
	noWind.Current.WindSpeedKMH = nil
	p.expect("flood forecast outranks flash flood", noWind, domain.LabelFloodForecast, t)

	noForecast := clone(noWind)
	noForecast.Daily = nil
	p.expect("flash flood outranks heat", noForecast, domain.LabelFlashFloodRisk, t)

	noRain := clone(noForecast)
	noRain.Current.RainMM = nil
	p.expect("heat outranks snow", noRain, domain.LabelExtremeHeatwave, t)

	noCurrent := domain.WeatherSnapshot{Daily: everything.Daily}
	p.expect("missing current conditions", noCurrent, domain.LabelNoData, t)

	return p
}

// ── Snapshot builders ──

func wind(v float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{WindSpeedKMH: domain.Float(v)}}
}

func temp(v float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{TemperatureC: domain.Float(v)}}
}

func snow(v float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{SnowfallCM: domain.Float(v)}}
}

func rainOnSoil(rain, soil float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{
		RainMM:               domain.Float(rain),
		SoilMoistureFraction: domain.Float(soil),
	}}
}

func forecast(maxPrecip float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		Current: &domain.CurrentConditions{},
		Daily:   []domain.DailyForecast{{PrecipitationSumMM: 1}, {PrecipitationSumMM: maxPrecip}},
	}
}

func clone(s domain.WeatherSnapshot) domain.WeatherSnapshot {
	out := domain.WeatherSnapshot{Daily: append([]domain.DailyForecast(nil), s.Daily...)}
	if s.Current != nil {
		c := *s.Current
		out.Current = &c
	}
	return out
}
