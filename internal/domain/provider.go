package domain

import "context"

// WeatherProvider fetches the weather snapshot at a coordinate.
type WeatherProvider interface {
	FetchWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// FireFeed fetches recent active-fire detections.
type FireFeed interface {
	FetchFires(ctx context.Context) ([]FireDetection, error)
}

// AlertFeed fetches current global disaster alerts.
type AlertFeed interface {
	FetchAlerts(ctx context.Context) ([]DisasterAlert, error)
}

// BriefingRequest is the situation handed to a Briefer.
type BriefingRequest struct {
	Lat      float64
	Lon      float64
	Snapshot WeatherSnapshot
	Label    Label
}

// Briefer produces a short operational briefing. It never fails: upstream
// problems come back as a warning-prefixed message instead of an error.
type Briefer interface {
	Brief(ctx context.Context, req BriefingRequest) string
}
