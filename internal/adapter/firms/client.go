// Package firms reads NASA FIRMS active-fire CSV exports.
//
// The MODIS C6.1 CSV columns are:
//
//	latitude,longitude,brightness,scan,track,acq_date,acq_time,satellite,
//	confidence,version,bright_t31,frp,daynight
//
// Columns are located by header name, so reordered or extra columns are tolerated.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
)

// Client implements domain.FireFeed over a FIRMS CSV URL.
type Client struct {
	http          upstream.Doer
	url           string
	minConfidence float64
}

// NewClient creates a FIRMS client. Detections at or below minConfidence are dropped.
func NewClient(doer upstream.Doer, url string, minConfidence float64) *Client {
	return &Client{http: doer, url: url, minConfidence: minConfidence}
}

// FetchFires downloads the feed and returns detections above the confidence floor.
func (c *Client) FetchFires(ctx context.Context) ([]domain.FireDetection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fires: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch fires: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fires, err := parseCSV(resp.Body, c.minConfidence)
	if err != nil {
		return nil, fmt.Errorf("parse fires: %w", err)
	}
	return fires, nil
}

var requiredColumns = []string{"latitude", "longitude", "confidence"}

func parseCSV(r io.Reader, minConfidence float64) ([]domain.FireDetection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty feed")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	fires := []domain.FireDetection{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		lat, errLat := strconv.ParseFloat(get(row, "latitude"), 64)
		lon, errLon := strconv.ParseFloat(get(row, "longitude"), 64)
		conf, errConf := parseConfidence(get(row, "confidence"))
		if errLat != nil || errLon != nil || errConf != nil {
			continue
		}
		if conf <= minConfidence {
			continue
		}

		fires = append(fires, domain.FireDetection{
			Lat:          lat,
			Lon:          lon,
			Confidence:   conf,
			Brightness:   parseFloatOrZero(get(row, "brightness")),
			FRP:          parseFloatOrZero(get(row, "frp")),
			AcquiredDate: get(row, "acq_date"),
			AcquiredTime: get(row, "acq_time"),
			Satellite:    get(row, "satellite"),
		})
	}
	return fires, nil
}

// parseConfidence accepts MODIS numeric confidence (0–100) and the VIIRS
// categorical levels low, nominal and high.
func parseConfidence(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "l", "low":
		return 0, nil
	case "n", "nominal":
		return 50, nil
	case "h", "high":
		return 100, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
