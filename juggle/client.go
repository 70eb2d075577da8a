// Package juggle implements a read-only client for the Juggle Energy
// REST/JSON telemetry API, which serves plant metadata and half-hourly
// device readings.
package juggle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/phall2020-ui/inverter-data-juggle/telemetry"
	timeutils "github.com/phall2020-ui/inverter-data-juggle/time_utils"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://www.emig.co.uk/p/api"

	// maxChunkDays is the largest date range worth requesting in one call:
	// the API caps responses at 5000 readings, which at a half-hourly cadence
	// is just over 104 days.
	maxChunkDays = 104
)

// Client implements the API onto the Juggle cloud.
type Client struct {
	httpClient http.Client
	baseURL    string
	apiKey     string

	logger *slog.Logger
}

// Device is one meter/inverter/weather-station entry of a plant.
type Device struct {
	EmigID string `json:"emigId"`
	Type   string `json:"type"`
}

// plantResponse is the JSON body returned by the plant metadata endpoint.
type plantResponse struct {
	PlantUID string   `json:"plantUid"`
	Meters   []Device `json:"meters"`
}

// readingsResponse is the JSON body returned by the readings endpoint.
type readingsResponse struct {
	Readings []telemetry.RawReading `json:"readings"`
}

func New(httpClient http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     slog.Default().With("host", baseURL),
	}
}

// PlantDevices returns all devices registered against the given plant.
func (c *Client) PlantDevices(ctx context.Context, plantUID string) ([]Device, error) {
	var resp plantResponse
	err := c.get(ctx, fmt.Sprintf("%s/plant/%s", c.baseURL, url.PathEscape(plantUID)), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch plant %s: %w", plantUID, err)
	}
	return resp.Meters, nil
}

// Inverters returns the EMIG IDs of the plant's inverters.
func (c *Client) Inverters(ctx context.Context, plantUID string) ([]string, error) {
	devices, err := c.PlantDevices(ctx, plantUID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, device := range devices {
		if device.Type == "INVERTER" {
			ids = append(ids, device.EmigID)
		}
	}
	return ids, nil
}

// Readings pulls the raw readings for one device over [start, end] at the
// given cadence. Ranges longer than the API's per-response cap are split into
// chunks transparently; chunk edges are snapped to half-hour boundaries so
// that no interval is requested twice.
func (c *Client) Readings(ctx context.Context, deviceID string, start, end time.Time, interval time.Duration) ([]telemetry.RawReading, error) {
	start = timeutils.FloorHH(start)
	end = timeutils.FloorHH(end)

	var all []telemetry.RawReading
	for chunkStart := start; chunkStart.Before(end); {
		chunkEnd := chunkStart.AddDate(0, 0, maxChunkDays)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		chunk, err := c.readingsChunk(ctx, deviceID, chunkStart, chunkEnd, interval)
		if err != nil {
			return nil, fmt.Errorf("fetch readings for %s (%s to %s): %w", deviceID, chunkStart, chunkEnd, err)
		}
		all = append(all, chunk...)

		c.logger.Debug("Fetched readings chunk", "device", deviceID, "from", chunkStart, "to", chunkEnd, "count", len(chunk))
		chunkStart = chunkEnd
	}
	return all, nil
}

func (c *Client) readingsChunk(ctx context.Context, deviceID string, start, end time.Time, interval time.Duration) ([]telemetry.RawReading, error) {
	query := url.Values{
		"start":        {start.Format("20060102")},
		"end":          {end.Format("20060102")},
		"minIntervalS": {fmt.Sprintf("%d", int(interval.Seconds()))},
	}

	var resp readingsResponse
	endpoint := fmt.Sprintf("%s/meter/%s/readings", c.baseURL, url.PathEscape(deviceID))
	if err := c.get(ctx, endpoint, query, &resp); err != nil {
		return nil, err
	}
	return resp.Readings, nil
}

// get performs an authenticated GET against the API and decodes the JSON
// response into `out`.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
