// Package gdacs reads the Global Disaster Alert and Coordination System RSS feed.
//
// Each item carries its position as a GeoRSS point ("lat lon") and, in most
// feeds, a W3C geo:Point with geo:lat/geo:long children. GDACS-specific
// elements (gdacs:eventtype, gdacs:alertlevel) arrive as RSS extensions.
package gdacs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const defaultTitle = "Unknown Event"

// Client implements domain.AlertFeed over a GDACS RSS URL.
type Client struct {
	http   upstream.Doer
	url    string
	parser *gofeed.Parser
}

// NewClient creates a GDACS feed client.
func NewClient(doer upstream.Doer, url string) *Client {
	return &Client{http: doer, url: url, parser: gofeed.NewParser()}
}

// FetchAlerts downloads the feed and returns every item that carries a position.
// A feed with one item and a feed with many both yield a slice.
func (c *Client) FetchAlerts(ctx context.Context) ([]domain.DisasterAlert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch alerts: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return toAlerts(feed.Items), nil
}

func toAlerts(items []*gofeed.Item) []domain.DisasterAlert {
	alerts := make([]domain.DisasterAlert, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		lat, lon, err := position(item.Extensions)
		if err != nil {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = defaultTitle
		}
		eventType := extValue(item.Extensions, "gdacs", "eventtype")
		if eventType == "" {
			eventType = domain.EventTypeUnknown
		}

		alerts = append(alerts, domain.DisasterAlert{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Lat:         lat,
			Lon:         lon,
			EventType:   eventType,
			AlertLevel:  extValue(item.Extensions, "gdacs", "alertlevel"),
			Link:        item.Link,
		})
	}
	return alerts
}

var errNoPosition = errors.New("item has no position")

// position reads georss:point, then geo:Point/geo:lat+geo:long, then bare geo:lat+geo:long.
func position(exts ext.Extensions) (float64, float64, error) {
	if point := extValue(exts, "georss", "point"); point != "" {
		fields := strings.Fields(point)
		if len(fields) == 2 {
			lat, errLat := strconv.ParseFloat(fields[0], 64)
			lon, errLon := strconv.ParseFloat(fields[1], 64)
			if errLat == nil && errLon == nil {
				return lat, lon, nil
			}
		}
	}

	geo := exts["geo"]
	if pts := find(geo, "point"); len(pts) > 0 {
		if lat, lon, ok := parseLatLon(childValue(pts[0].Children, "lat"), childValue(pts[0].Children, "long")); ok {
			return lat, lon, nil
		}
	}
	if lat, lon, ok := parseLatLon(childValue(geo, "lat"), childValue(geo, "long")); ok {
		return lat, lon, nil
	}
	return 0, 0, errNoPosition
}

func parseLatLon(latStr, lonStr string) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	return lat, lon, errLat == nil && errLon == nil
}

func extValue(exts ext.Extensions, prefix, name string) string {
	return childValue(exts[prefix], name)
}

func childValue(m map[string][]ext.Extension, name string) string {
	if vals := find(m, name); len(vals) > 0 {
		return strings.TrimSpace(vals[0].Value)
	}
	return ""
}

// find looks up an element by local name, ignoring case.
func find(m map[string][]ext.Extension, name string) []ext.Extension {
	if vals, ok := m[name]; ok {
		return vals
	}
	for k, vals := range m {
		if strings.EqualFold(k, name) {
			return vals
		}
	}
	return nil
}
