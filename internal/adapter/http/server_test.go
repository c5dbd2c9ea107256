package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/http"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/dashboard"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockDashboard struct {
	assessed [][2]float64
	query    *dashboard.HazardQuery
	layers   dashboard.HazardLayers
}

func (m *mockDashboard) Assess(_ context.Context, lat, lon float64) dashboard.Assessment {
	m.assessed = append(m.assessed, [2]float64{lat, lon})
	return dashboard.Assessment{
		ID:               "a-1",
		Lat:              lat,
		Lon:              lon,
		WeatherAvailable: true,
		Verdict: dashboard.VerdictView{
			Label:       domain.LabelNormal,
			DisplayName: "Normal Conditions",
			Severity:    domain.SeverityNone,
			Color:       dashboard.ColorGreen,
		},
		Forecast: []dashboard.ForecastPoint{},
	}
}

func (m *mockDashboard) Hazards(_ context.Context, q dashboard.HazardQuery) dashboard.HazardLayers {
	m.query = &q
	return m.layers
}

func newTestServer(readyErr error) (*httpadapter.Server, *mockDashboard) {
	d := &mockDashboard{layers: dashboard.HazardLayers{Fires: []dashboard.FireMarker{}, Alerts: []dashboard.AlertMarker{}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", d, &mockReadiness{err: readyErr}, logger), d
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("openmeteo: circuit breaker is open"))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndexServesMapPage(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "leaflet")
}

func TestAssessment_OK(t *testing.T) {
	srv, d := newTestServer(nil)
	rec := get(t, srv, "/api/v1/assessment?lat=21.1458&lon=79.0882")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, d.assessed, 1)
	assert.Equal(t, [2]float64{21.1458, 79.0882}, d.assessed[0])

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a-1", body["id"])
	verdict := body["verdict"].(map[string]any)
	assert.Equal(t, "NORMAL", verdict["label"])
	assert.Equal(t, "none", verdict["severity"])
	assert.Equal(t, "green", verdict["color"])
}

func TestAssessment_InclusiveBounds(t *testing.T) {
	srv, d := newTestServer(nil)
	rec := get(t, srv, "/api/v1/assessment?lat=-90&lon=180")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, d.assessed, 1)
}

func TestAssessment_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"missing lat", "lon=10", "lat is required"},
		{"missing lon", "lat=10", "lon is required"},
		{"lat not a number", "lat=north&lon=10", "lat must be a number"},
		{"lat too high", "lat=90.5&lon=10", "lat must be between -90 and 90"},
		{"lon too low", "lat=10&lon=-181", "lon must be between -180 and 180"},
		{"lat NaN", "lat=NaN&lon=10", "lat must be between -90 and 90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, d := newTestServer(nil)
			rec := get(t, srv, "/api/v1/assessment?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec))
			assert.Empty(t, d.assessed)
		})
	}
}

func TestHazards_DefaultsToAllLayers(t *testing.T) {
	srv, d := newTestServer(nil)
	rec := get(t, srv, "/api/v1/hazards")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.query)
	assert.Equal(t, dashboard.HazardQuery{Fires: true, Alerts: true}, *d.query)
	assert.JSONEq(t, `{"fires":[],"alerts":[]}`, rec.Body.String())
}

func TestHazards_LayerToggles(t *testing.T) {
	srv, d := newTestServer(nil)
	rec := get(t, srv, "/api/v1/hazards?fires=false")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.HazardQuery{Fires: false, Alerts: true}, *d.query)
}

func TestHazards_InvalidToggle(t *testing.T) {
	srv, d := newTestServer(nil)
	rec := get(t, srv, "/api/v1/hazards?alerts=maybe")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "alerts must be true or false", decodeError(t, rec))
	assert.Nil(t, d.query)
}

func TestHazards_GzipWhenAccepted(t *testing.T) {
	srv, d := newTestServer(nil)
	for i := range 50 {
		d.layers.Fires = append(d.layers.Fires, dashboard.FireMarker{
			FireDetection: domain.FireDetection{Lat: float64(i), Lon: 80.25, Confidence: 85, Satellite: "N", AcquiredDate: "2024-07-01"},
			Color:         dashboard.ColorRed,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hazards", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestUnknownRouteIs404(t *testing.T) {
	srv, _ := newTestServer(nil)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/nope").Code)
}
