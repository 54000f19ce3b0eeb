// Package directions is the HTTP client of the external directions provider.
// One request per call, no retry, bounded timeout, client-side rate limit.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

	DefaultTimeout        = 10 * time.Second
	DefaultRequestsPerSec = 10
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewClient(apiKey, baseURL string, timeout time.Duration, requestsPerSec float64,
	log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if requestsPerSec <= 0 {
		requestsPerSec = DefaultRequestsPerSec
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		log:     log,
	}
}

type Request struct {
	origin        datastructure.Coordinate
	destination   datastructure.Coordinate
	intermediates []datastructure.Coordinate
	optimize      bool
	mode          pkg.TravelMode
}

func NewRequest(origin, destination datastructure.Coordinate,
	intermediates []datastructure.Coordinate, optimize bool, mode pkg.TravelMode) Request {
	return Request{
		origin:        origin,
		destination:   destination,
		intermediates: intermediates,
		optimize:      optimize,
		mode:          mode,
	}
}

func (r Request) GetOrigin() datastructure.Coordinate {
	return r.origin
}

func (r Request) GetDestination() datastructure.Coordinate {
	return r.destination
}

func (r Request) GetIntermediates() []datastructure.Coordinate {
	return r.intermediates
}

func (r Request) IsOptimize() bool {
	return r.optimize
}

func (r Request) GetMode() pkg.TravelMode {
	return r.mode
}

// Directions issues one GET to the provider. Transport failure, a non-2xx
// reply, a malformed payload or a non-OK provider status all fail with
// util.ErrProviderUnavailable; an OK status carrying zero routes fails with
// util.ErrNoRouteFound.
func (c *Client) Directions(ctx context.Context, request Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, util.WrapErrorf(err, util.ErrProviderUnavailable,
			"directions rate limiter: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrProviderUnavailable,
			"build directions request")
	}
	req.URL.RawQuery = c.queryString(request)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrProviderUnavailable,
			"directions request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, util.WrapErrorf(nil, util.ErrProviderUnavailable,
			"directions provider replied http %d", resp.StatusCode)
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, util.WrapErrorf(err, util.ErrProviderUnavailable,
			"malformed directions response")
	}

	if response.Status != pkg.DIRECTIONS_STATUS_OK {
		c.log.Warn("directions provider returned non-OK status",
			zap.String("status", response.Status))
		return nil, util.WrapErrorf(nil, util.ErrProviderUnavailable,
			"directions provider status %q", response.Status)
	}
	if len(response.Routes) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNoRouteFound,
			"directions provider returned zero routes")
	}

	return &response, nil
}

func (c *Client) queryString(request Request) string {
	q := url.Values{}
	q.Set("origin", formatCoordinate(request.origin))
	q.Set("destination", formatCoordinate(request.destination))
	if len(request.intermediates) > 0 {
		q.Set("waypoints", formatWaypoints(request.intermediates, request.optimize))
	}
	q.Set("mode", providerMode(request.mode))
	q.Set("key", c.apiKey)
	return q.Encode()
}

func formatCoordinate(c datastructure.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.GetLat(), c.GetLon())
}

func formatWaypoints(intermediates []datastructure.Coordinate, optimize bool) string {
	parts := make([]string, 0, len(intermediates)+1)
	if optimize {
		parts = append(parts, "optimize:true")
	}
	for _, c := range intermediates {
		parts = append(parts, formatCoordinate(c))
	}
	return strings.Join(parts, "|")
}

// providerMode. the provider spells the cycling mode "bicycling"
func providerMode(mode pkg.TravelMode) string {
	if mode == pkg.CYCLING {
		return "bicycling"
	}
	return mode.String()
}
