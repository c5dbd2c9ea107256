package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
)

// WarningPrefix marks every degraded briefing.
const WarningPrefix = "⚠️"

// ErrMissingCredential means no API key was configured; no request is sent.
var ErrMissingCredential = errors.New("GOOGLE_API_KEY is not configured")

// APIError is a non-success response from the Gemini API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

// Briefer implements domain.Briefer using the Gemini generateContent REST API.
type Briefer struct {
	apiKey  string
	model   string
	baseURL string
	http    upstream.Doer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewBriefer creates a Gemini briefer. An empty apiKey is allowed and reported
// in every briefing.
func NewBriefer(apiKey, model, baseURL string, doer upstream.Doer, metrics *observability.Metrics, logger *slog.Logger) *Briefer {
	return &Briefer{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		metrics: metrics,
		logger:  logger,
	}
}

// Brief returns a three-bullet briefing, or a WarningPrefix message describing
// why one could not be produced.
func (b *Briefer) Brief(ctx context.Context, req domain.BriefingRequest) string {
	text, err := b.generate(ctx, buildPrompt(req))
	if err == nil {
		return text
	}

	kind, msg := describe(err)
	b.metrics.BriefingFailures.WithLabelValues(kind).Inc()
	b.logger.Warn("briefing unavailable", "kind", kind, "error", err)
	return msg
}

// describe maps a generation error to its failure kind and user-facing message.
func describe(err error) (kind, msg string) {
	var apiErr *APIError
	var netErr net.Error
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "credential", WarningPrefix + " Error: GOOGLE_API_KEY is not configured."
	case errors.As(err, &apiErr):
		return "api", WarningPrefix + " API Error: " + apiErr.Message
	case errors.Is(err, upstream.ErrCircuitOpen),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return "network", WarningPrefix + " Network Error: Could not connect to the briefing service."
	default:
		return "unexpected", WarningPrefix + " Unexpected Error: " + err.Error()
	}
}

func (b *Briefer) generate(ctx context.Context, prompt string) (string, error) {
	if b.apiKey == "" {
		return "", ErrMissingCredential
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", b.baseURL, b.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return "", &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return extractText(parsed)
}

func buildPrompt(req domain.BriefingRequest) string {
	temp, rain, wind := "N/A", "0", "0"
	if c := req.Snapshot.Current; c != nil {
		if c.TemperatureC != nil {
			temp = domain.FormatMeasurement(*c.TemperatureC)
		}
		rain = domain.FormatMeasurement(c.Rain())
		wind = domain.FormatMeasurement(c.WindSpeed())
	}

	return fmt.Sprintf(`Act as a Senior Disaster Response Official.

SITUATION:
- Location: %s, %s
- Risk: %s
- Weather: %s°C, Rain %smm, Wind %skm/h.

MISSION:
Write a 3-bullet operational briefing (Threat, Action, Resources).
Keep it urgent, professional, and under 50 words.`,
		domain.FormatMeasurement(req.Lat), domain.FormatMeasurement(req.Lon),
		req.Label.DisplayName(), temp, rain, wind)
}

// errorMessage pulls error.message from a Gemini error body.
func errorMessage(status int, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}

func extractText(resp generateResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini response missing candidates")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini response missing text")
	}
	return text, nil
}

// Gemini API request and response types.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
