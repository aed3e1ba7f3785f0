// ABOUTME: Dashboard and health endpoints: GET /stats and GET /
// ABOUTME: Decodes counters and the weekly query chart

package client

import (
	"context"
	"net/http"
)

// ChartPoint is one bar of the weekly query chart.
type ChartPoint struct {
	Name    string `json:"name"`
	Queries int    `json:"queries"`
}

// Stats holds the dashboard counters.
type Stats struct {
	TotalDocs int          `json:"total_docs"`
	Queries   int          `json:"queries"`
	Accuracy  float64      `json:"accuracy"`
	ChartData []ChartPoint `json:"chart_data"`
}

// Stats fetches dashboard counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.doJSON(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// HealthStatus is the backend's self-report.
type HealthStatus struct {
	Status string `json:"status"`
	System string `json:"system"`
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
