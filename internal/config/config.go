package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Open-Meteo weather provider.
	WeatherBaseURL  string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com/v1/forecast"`
	WeatherTimeout  time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	WeatherCacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"5m"`

	// Hazard feeds.
	FIRMSURL           string        `envconfig:"FIRMS_URL" default:"https://firms.modaps.eosdis.nasa.gov/data/active_fire/modis-c6.1/csv/MODIS_C6_1_South_Asia_24h.csv"`
	FIRMSMinConfidence float64       `envconfig:"FIRMS_MIN_CONFIDENCE" default:"70"`
	GDACSURL           string        `envconfig:"GDACS_URL" default:"https://www.gdacs.org/xml/rss.xml"`
	FeedTimeout        time.Duration `envconfig:"FEED_TIMEOUT" default:"10s"`
	FeedCacheTTL       time.Duration `envconfig:"FEED_CACHE_TTL" default:"1h"`

	CacheSize int `envconfig:"CACHE_SIZE" default:"1000"`

	// Gemini briefing generator. An empty key is reported in the briefing
	// text rather than at startup.
	GoogleAPIKey    string        `envconfig:"GOOGLE_API_KEY"`
	BriefingModel   string        `envconfig:"BRIEFING_MODEL" default:"gemini-2.0-flash"`
	BriefingBaseURL string        `envconfig:"BRIEFING_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/models"`
	BriefingTimeout time.Duration `envconfig:"BRIEFING_TIMEOUT" default:"15s"`

	// Assessment event stream (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled         bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers         []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaAssessmentTopic string   `envconfig:"KAFKA_ASSESSMENT_TOPIC" default:"risk-assessments"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
		{"WEATHER_TIMEOUT", c.WeatherTimeout},
		{"WEATHER_CACHE_TTL", c.WeatherCacheTTL},
		{"FEED_TIMEOUT", c.FeedTimeout},
		{"FEED_CACHE_TTL", c.FeedCacheTTL},
		{"BRIEFING_TIMEOUT", c.BriefingTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("invalid %s: must be positive", d.name)
		}
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", c.LogFormat)
	}
	if c.WeatherBaseURL == "" {
		return errors.New("WEATHER_BASE_URL is required")
	}
	if c.FIRMSURL == "" {
		return errors.New("FIRMS_URL is required")
	}
	if c.GDACSURL == "" {
		return errors.New("GDACS_URL is required")
	}
	if c.FIRMSMinConfidence < 0 || c.FIRMSMinConfidence > 100 {
		return errors.New("invalid FIRMS_MIN_CONFIDENCE: must be between 0 and 100")
	}
	if c.CacheSize <= 0 {
		return errors.New("invalid CACHE_SIZE: must be positive")
	}
	if c.BriefingModel == "" {
		return errors.New("BRIEFING_MODEL is required")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if c.KafkaAssessmentTopic == "" {
			return errors.New("KAFKA_ENABLED is true but KAFKA_ASSESSMENT_TOPIC is not set")
		}
	}
	return nil
}
