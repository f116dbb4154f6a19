package here

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"salesroute/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultGeocodeURL  = "https://geocode.search.hereapi.com/v1/geocode"
	DefaultRouterURL   = "https://router.hereapi.com/v8/routes"
	DefaultRouterV7URL = "https://route.ls.hereapi.com/routing/7.2/calculateroute.json"
	DefaultTimeout     = 30 * time.Second

	maxErrorBody = 4 << 10
)

// Config holds the HERE credentials and endpoints. Empty URLs fall back to the public ones.
type Config struct {
	APIKey      string
	GeocodeURL  string
	RouterURL   string
	RouterV7URL string
	Timeout     time.Duration
}

// StatusError is returned when HERE answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("here %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client calls the HERE Geocoding and Routing REST APIs
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a HERE client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.RouterURL == "" {
		cfg.RouterURL = DefaultRouterURL
	}
	if cfg.RouterV7URL == "" {
		cfg.RouterV7URL = DefaultRouterV7URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Geocode resolves a free-text address to the first candidate position.
// Returns nil without error when HERE has no candidates.
func (c *Client) Geocode(ctx context.Context, address string) (*model.Coordinate, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("apiKey", c.cfg.APIKey) // camelCase for Geocoding API

	var resp model.GeocodeResponse
	if err := c.get(ctx, "geocode", c.cfg.GeocodeURL, params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		c.logger.Debug("no geocoding candidates", zap.String("address", address))
		return nil, nil
	}

	coord := resp.Items[0].Position.Coordinate()
	c.logger.Debug("geocoded address",
		zap.String("address", address),
		zap.String("title", resp.Items[0].Title),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lon", coord.Lon),
	)
	return &coord, nil
}

// Route requests a car route from Routing v8 with encoded polylines per section
func (c *Client) Route(ctx context.Context, origin, destination model.Coordinate) (*model.RouteResponse, error) {
	params := url.Values{}
	params.Set("transportMode", "car")
	params.Set("origin", origin.String())
	params.Set("destination", destination.String())
	params.Set("return", "polyline")
	params.Set("apikey", c.cfg.APIKey) // lowercase for Routing API

	var resp model.RouteResponse
	if err := c.get(ctx, "route", c.cfg.RouterURL, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RouteShape requests a car route from Routing v7.2 with an unencoded shape array
func (c *Client) RouteShape(ctx context.Context, origin, destination model.Coordinate) (*model.ShapeResponse, error) {
	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("waypoint0", "geo!"+origin.String())
	params.Set("waypoint1", "geo!"+destination.String())
	params.Set("mode", "fastest;car;traffic:disabled")
	params.Set("representation", "display")
	params.Set("legAttributes", "shape")

	var resp model.ShapeResponse
	if err := c.get(ctx, "route shape", c.cfg.RouterV7URL, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call HERE %s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("HERE request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode HERE %s response: %w", op, err)
	}
	return nil
}
