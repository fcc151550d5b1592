package qweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/climabridge/climabridge/internal/cache"
	"github.com/climabridge/climabridge/internal/config"
)

// DayKind selects the forecast window for the multi-day endpoint.
// Unrecognized values fall back to the shortest window so loose callers
// degrade to a valid request instead of failing.
const (
	DayKind3Days = 1 + iota
	DayKind7Days
	DayKind10Days
	DayKind15Days
	DayKind30Days
)

// DayWindow maps a day kind to the upstream's window path token.
func DayWindow(kind int) string {
	switch kind {
	case DayKind3Days:
		return "3d"
	case DayKind7Days:
		return "7d"
	case DayKind10Days:
		return "10d"
	case DayKind15Days:
		return "15d"
	case DayKind30Days:
		return "30d"
	default:
		return "3d"
	}
}

// maxResponseBytes bounds how much of an upstream response is read; the
// largest legitimate payload (a 30-day forecast) is well under this.
const maxResponseBytes = 1 << 20

// Client provides typed accessors to the weather provider's endpoints. Each
// accessor authenticates via the credential token source and routes its
// result through the cache under that endpoint's namespace and TTL.
type Client struct {
	cfg        config.QWeatherConfig
	httpClient *http.Client

	nowCache     cache.Store[NowResponse]
	dailyCache   cache.Store[DailyResponse]
	hourlyCache  cache.Store[HourlyResponse]
	indicesCache cache.Store[IndicesResponse]
	geoCache     cache.Store[GeoResponse]
	topCache     cache.Store[TopCityResponse]
}

// New creates a Client. The token source supplies the upstream credential for
// the Authorization header; the backend supplies the cache stores, one per
// data kind with that kind's TTL.
func New(cfg config.QWeatherConfig, source oauth2.TokenSource, backend *cache.Backend) (*Client, error) {
	nowCache, err := cache.NewStore[NowResponse](backend, cache.TTLRealtime, 10_000)
	if err != nil {
		return nil, fmt.Errorf("now cache configuration failed: %w", err)
	}
	dailyCache, err := cache.NewStore[DailyResponse](backend, cache.TTLDaily, 10_000)
	if err != nil {
		return nil, fmt.Errorf("daily cache configuration failed: %w", err)
	}
	hourlyCache, err := cache.NewStore[HourlyResponse](backend, cache.TTLHourly, 10_000)
	if err != nil {
		return nil, fmt.Errorf("hourly cache configuration failed: %w", err)
	}
	indicesCache, err := cache.NewStore[IndicesResponse](backend, cache.TTLIndices, 10_000)
	if err != nil {
		return nil, fmt.Errorf("indices cache configuration failed: %w", err)
	}
	geoCache, err := cache.NewStore[GeoResponse](backend, cache.TTLDefault, 10_000)
	if err != nil {
		return nil, fmt.Errorf("geo cache configuration failed: %w", err)
	}
	topCache, err := cache.NewStore[TopCityResponse](backend, cache.TTLDefault, 1_000)
	if err != nil {
		return nil, fmt.Errorf("top city cache configuration failed: %w", err)
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{
				Source: source,
				Base:   http.DefaultTransport,
			},
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		nowCache:     nowCache,
		dailyCache:   dailyCache,
		hourlyCache:  hourlyCache,
		indicesCache: indicesCache,
		geoCache:     geoCache,
		topCache:     topCache,
	}, nil
}

// Now returns current conditions for a location (provider location ID or
// "lon,lat").
func (c *Client) Now(ctx context.Context, location string) (NowResponse, error) {
	if location == "" {
		return NowResponse{}, &InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}

	target := c.cfg.APIHost + "/v7/weather/now?location=" + url.QueryEscape(location)
	resp, err := cache.GetOrLoad(ctx, c.nowCache, "weather:now:"+location,
		func(ctx context.Context) (NowResponse, error) {
			return fetch[NowResponse](ctx, c, target)
		},
		func(r NowResponse) bool { return r.OK() },
	)
	if err != nil {
		return NowResponse{}, err
	}
	if !resp.OK() {
		return NowResponse{}, &UpstreamError{Code: resp.Code}
	}
	return resp, nil
}

// Daily returns the multi-day forecast for the window selected by kind.
func (c *Client) Daily(ctx context.Context, location string, kind int) (DailyResponse, error) {
	if location == "" {
		return DailyResponse{}, &InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}

	window := DayWindow(kind)
	target := c.cfg.APIHost + "/v7/weather/" + window + "?location=" + url.QueryEscape(location)
	resp, err := cache.GetOrLoad(ctx, c.dailyCache, "weather:daily:"+window+":"+location,
		func(ctx context.Context) (DailyResponse, error) {
			return fetch[DailyResponse](ctx, c, target)
		},
		func(r DailyResponse) bool { return r.OK() },
	)
	if err != nil {
		return DailyResponse{}, err
	}
	if !resp.OK() {
		return DailyResponse{}, &UpstreamError{Code: resp.Code}
	}
	return resp, nil
}

// Hourly returns the 24-hour forecast.
func (c *Client) Hourly(ctx context.Context, location string) (HourlyResponse, error) {
	if location == "" {
		return HourlyResponse{}, &InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}

	target := c.cfg.APIHost + "/v7/weather/24h?location=" + url.QueryEscape(location)
	resp, err := cache.GetOrLoad(ctx, c.hourlyCache, "weather:hourly:"+location,
		func(ctx context.Context) (HourlyResponse, error) {
			return fetch[HourlyResponse](ctx, c, target)
		},
		func(r HourlyResponse) bool { return r.OK() },
	)
	if err != nil {
		return HourlyResponse{}, err
	}
	if !resp.OK() {
		return HourlyResponse{}, &UpstreamError{Code: resp.Code}
	}
	return resp, nil
}

// Indices returns today's life-style indices for the comma-separated type
// set. An empty set falls back to the configured default.
func (c *Client) Indices(ctx context.Context, location string, types string) (IndicesResponse, error) {
	if location == "" {
		return IndicesResponse{}, &InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}
	if types == "" {
		types = c.cfg.IndicesTypes
	}

	target := c.cfg.APIHost + "/v7/indices/1d?type=" + url.QueryEscape(types) +
		"&location=" + url.QueryEscape(location)
	resp, err := cache.GetOrLoad(ctx, c.indicesCache, "weather:indices:"+types+":"+location,
		func(ctx context.Context) (IndicesResponse, error) {
			return fetch[IndicesResponse](ctx, c, target)
		},
		func(r IndicesResponse) bool { return r.OK() },
	)
	if err != nil {
		return IndicesResponse{}, err
	}
	if !resp.OK() {
		return IndicesResponse{}, &UpstreamError{Code: resp.Code}
	}
	return resp, nil
}

// LookupGeo searches location candidates by name or "lon,lat" coordinates.
// Zero upstream matches (including the geo endpoint's problem-object
// response) yield an empty list, not an error.
func (c *Client) LookupGeo(ctx context.Context, location string) ([]GeoLocation, error) {
	if location == "" {
		return nil, &InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}

	target := c.cfg.GeoAPIHost + "/v2/city/lookup?range=cn&location=" + url.QueryEscape(location)
	resp, err := cache.GetOrLoad(ctx, c.geoCache, "geo:lookup:"+location,
		func(ctx context.Context) (GeoResponse, error) {
			return fetch[GeoResponse](ctx, c, target)
		},
		func(r GeoResponse) bool { return r.OK() && r.Error == nil },
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		log.Info().Str("location", location).Interface("error", resp.Error).
			Msg("geo lookup returned no matches")
		return []GeoLocation{}, nil
	}
	if !resp.OK() {
		return nil, &UpstreamError{Code: resp.Code}
	}
	return resp.Location, nil
}

// TopCities returns the provider's ranked city list for a range, bounded to
// number entries.
func (c *Client) TopCities(ctx context.Context, rangeCode string, number int) ([]GeoLocation, error) {
	if rangeCode == "" {
		rangeCode = "cn"
	}
	if number <= 0 {
		number = 10
	}

	target := c.cfg.GeoAPIHost + "/v2/city/top?range=" + url.QueryEscape(rangeCode) +
		"&number=" + strconv.Itoa(number)
	resp, err := cache.GetOrLoad(ctx, c.topCache, "geo:top:"+rangeCode+":"+strconv.Itoa(number),
		func(ctx context.Context) (TopCityResponse, error) {
			return fetch[TopCityResponse](ctx, c, target)
		},
		func(r TopCityResponse) bool { return r.OK() },
	)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &UpstreamError{Code: resp.Code}
	}
	return resp.TopCityList, nil
}

// fetch performs the authenticated GET and decodes the JSON envelope.
// Transport-level 4xx/5xx responses become UpstreamError and are never
// cached; embedded envelope codes are the caller's concern.
func fetch[T any](ctx context.Context, c *Client, target string) (T, error) {
	var out T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return out, fmt.Errorf("building upstream request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("upstream request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return out, fmt.Errorf("reading upstream response: %w", err)
	}

	if res.StatusCode >= 400 {
		return out, &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decoding upstream response: %w", err)
	}

	return out, nil
}
