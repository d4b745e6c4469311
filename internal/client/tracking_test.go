package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathCounter counts requests per path across handler goroutines
type pathCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (p *pathCounter) bump(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits[path]++
}

func (p *pathCounter) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func newTrackingServer(t *testing.T) (*httptest.Server, *pathCounter) {
	t.Helper()
	counter := &pathCounter{hits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/vehicles/TRK-1/mileage", func(w http.ResponseWriter, r *http.Request) {
		counter.bump(r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracking_id":"TRK-1","mileage":84210}`))
	})
	mux.HandleFunc("/vehicles/TRK-1", func(w http.ResponseWriter, r *http.Request) {
		counter.bump(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracking_id":"TRK-1","mileage":84210,"latitude":48.85,"longitude":2.35,"last_seen":"2025-06-15T09:30:00Z"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, counter
}

func TestGetMileageUsesMileageEndpoint(t *testing.T) {
	srv, hits := newTrackingServer(t)
	t.Setenv("TRACKING_API_URL", srv.URL)
	t.Setenv("TRACKING_API_TOKEN", "test-token")

	c := NewTrackingClientFromEnv()
	require.NotNil(t, c)

	mileage, err := c.GetMileage(context.Background(), "TRK-1")
	require.NoError(t, err)
	assert.EqualValues(t, 84210, mileage)
	assert.Equal(t, 1, hits.count("/vehicles/TRK-1/mileage"))
	assert.Equal(t, 0, hits.count("/vehicles/TRK-1"), "odometer sync must not pull the detail payload")
}

func TestGetVehicleDetail(t *testing.T) {
	srv, hits := newTrackingServer(t)
	t.Setenv("TRACKING_API_URL", srv.URL)
	t.Setenv("TRACKING_API_TOKEN", "test-token")

	c := NewTrackingClientFromEnv()
	require.NotNil(t, c)

	detail, err := c.GetVehicleDetail(context.Background(), "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", detail.TrackingID)
	assert.EqualValues(t, 84210, detail.Mileage)
	assert.Equal(t, 1, hits.count("/vehicles/TRK-1"))
}

func TestGetMileageUnknownVehicle(t *testing.T) {
	srv, _ := newTrackingServer(t)
	t.Setenv("TRACKING_API_URL", srv.URL)
	t.Setenv("TRACKING_API_TOKEN", "test-token")

	c := NewTrackingClientFromEnv()
	require.NotNil(t, c)

	_, err := c.GetMileage(context.Background(), "TRK-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClientDisabledWithoutURL(t *testing.T) {
	t.Setenv("TRACKING_API_URL", "")
	assert.Nil(t, NewTrackingClientFromEnv())
}
