// Package dashboard runs the point-assessment chain and assembles hazard layers
// for the map. Provider failures stop here: they are logged and become absent
// weather or empty layers, never errors returned to the caller.
package dashboard

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventPublisher receives one event per completed assessment.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AssessmentEvent) error
}

// Service wires providers, the classifier and the briefer.
type Service struct {
	weather   domain.WeatherProvider
	fires     domain.FireFeed
	alerts    domain.AlertFeed
	briefer   domain.Briefer
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	newID     func() string
}

// New creates a Service. Pass a nil publisher to disable the event stream.
func New(
	weather domain.WeatherProvider,
	fires domain.FireFeed,
	alerts domain.AlertFeed,
	briefer domain.Briefer,
	publisher EventPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		weather:   weather,
		fires:     fires,
		alerts:    alerts,
		briefer:   briefer,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		newID:     uuid.NewString,
	}
}

// Assess runs fetch → classify → brief for one point. The steps run in order.
// When weather is unavailable the verdict is NO_DATA and no briefing is requested.
func (s *Service) Assess(ctx context.Context, lat, lon float64) Assessment {
	snapshot, err := s.weather.FetchWeather(ctx, lat, lon)
	available := err == nil
	if err != nil {
		s.logger.Warn("weather unavailable", "lat", lat, "lon", lon, "error", err)
		snapshot = domain.WeatherSnapshot{}
	}

	verdict := domain.Assess(snapshot)
	s.metrics.Assessments.WithLabelValues(string(verdict.Label), verdict.Severity.String()).Inc()

	var briefing string
	if available && snapshot.HasCurrent() {
		briefing = s.briefer.Brief(ctx, domain.BriefingRequest{
			Lat:      lat,
			Lon:      lon,
			Snapshot: snapshot,
			Label:    verdict.Label,
		})
	}

	event := domain.NewAssessmentEvent(s.newID(), lat, lon, available, verdict)
	s.publish(ctx, event)

	s.logger.Info("point assessed",
		"id", event.ID, "lat", lat, "lon", lon,
		"label", verdict.Label, "severity", verdict.Severity.String())

	return newAssessment(event, snapshot, briefing)
}

func (s *Service) publish(ctx context.Context, event domain.AssessmentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventPublishErrors.Inc()
		s.logger.Error("publish assessment event", "id", event.ID, "error", err)
		return
	}
	s.metrics.EventsPublished.Inc()
}

// HazardQuery selects which map layers to load.
type HazardQuery struct {
	Fires  bool
	Alerts bool
}

// Hazards loads the requested layers concurrently. A failed feed yields an
// empty layer.
func (s *Service) Hazards(ctx context.Context, q HazardQuery) HazardLayers {
	var (
		fires  []domain.FireDetection
		alerts []domain.DisasterAlert
	)

	g, gctx := errgroup.WithContext(ctx)
	if q.Fires {
		g.Go(func() error {
			f, err := s.fires.FetchFires(gctx)
			if err != nil {
				s.logger.Warn("fire feed unavailable", "error", err)
				return nil
			}
			fires = f
			return nil
		})
	}
	if q.Alerts {
		g.Go(func() error {
			a, err := s.alerts.FetchAlerts(gctx)
			if err != nil {
				s.logger.Warn("alert feed unavailable", "error", err)
				return nil
			}
			alerts = a
			return nil
		})
	}
	_ = g.Wait() // layer loaders absorb their own errors

	return newHazardLayers(fires, alerts)
}
