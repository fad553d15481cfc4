package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Geocoder resolves coordinates to a structured address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (map[string]any, error)
}

// Nominatim calls a Nominatim instance's /reverse endpoint.
type Nominatim struct {
	url    string
	client *http.Client
}

// NewNominatim creates a client for the Nominatim server at base URL.
func NewNominatim(baseURL string) *Nominatim {
	return &Nominatim{
		url:    baseURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Reverse geocodes a point and returns the address detail map.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (map[string]any, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("zoom", "18")

	req, err := http.NewRequestWithContext(ctx, "GET", n.url+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim api status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Address map[string]any `json:"address"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Address == nil {
		return nil, fmt.Errorf("no address for %f, %f", lat, lon)
	}
	return result.Address, nil
}
