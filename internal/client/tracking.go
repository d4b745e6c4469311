package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// TrackingClient reads vehicle telemetry from the external fleet tracking API.
type TrackingClient interface {
	GetMileage(ctx context.Context, trackingID string) (int64, error)
	GetVehicleDetail(ctx context.Context, trackingID string) (*TrackedVehicle, error)
}

// TrackedVehicle is the subset of the tracking API's vehicle payload we use
type TrackedVehicle struct {
	TrackingID string  `json:"tracking_id"`
	Mileage    int64   `json:"mileage"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	LastSeen   string  `json:"last_seen"`
}

type trackingClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewTrackingClientFromEnv builds a client from TRACKING_API_URL and
// TRACKING_API_TOKEN. Returns nil when the URL is unset; callers treat a nil
// client as "tracking integration disabled".
func NewTrackingClientFromEnv() TrackingClient {
	baseURL := os.Getenv("TRACKING_API_URL")
	if baseURL == "" {
		return nil
	}
	return &trackingClient{
		baseURL: baseURL,
		token:   os.Getenv("TRACKING_API_TOKEN"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetMileage reads the lightweight mileage endpoint; the full vehicle detail
// payload is not fetched for odometer syncs.
func (c *trackingClient) GetMileage(ctx context.Context, trackingID string) (int64, error) {
	endpoint := fmt.Sprintf("%s/vehicles/%s/mileage", c.baseURL, url.PathEscape(trackingID))

	var payload struct {
		TrackingID string `json:"tracking_id"`
		Mileage    int64  `json:"mileage"`
	}
	if err := c.getJSON(ctx, endpoint, trackingID, &payload); err != nil {
		return 0, err
	}
	return payload.Mileage, nil
}

func (c *trackingClient) GetVehicleDetail(ctx context.Context, trackingID string) (*TrackedVehicle, error) {
	endpoint := fmt.Sprintf("%s/vehicles/%s", c.baseURL, url.PathEscape(trackingID))

	var detail TrackedVehicle
	if err := c.getJSON(ctx, endpoint, trackingID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *trackingClient) getJSON(ctx context.Context, endpoint, trackingID string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tracking api request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("tracking id %q not found", trackingID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracking api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tracking api returned malformed payload: %w", err)
	}
	return nil
}
