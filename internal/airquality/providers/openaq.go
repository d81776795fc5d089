package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// DefaultOpenAQBaseURL is the public OpenAQ v3 API.
const DefaultOpenAQBaseURL = "https://api.openaq.org/v3"

const (
	searchRadiusMeters = 25000
	resultLimit        = 10
)

// OpenAQConfig configures both OpenAQ strategies.
type OpenAQConfig struct {
	BaseURL string
	APIKey  string
	HTTP    HTTPClientConfig
}

// OpenAQStrategy queries one OpenAQ endpoint and normalizes its first result.
type OpenAQStrategy struct {
	name     string
	source   string
	endpoint string
	apiKey   string
	params   url.Values
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenAQStrategies returns the strategies in the order they must be tried:
// "locations" first, then "latest".
func NewOpenAQStrategies(cfg OpenAQConfig) []airquality.Strategy {
	return []airquality.Strategy{
		NewLocationsStrategy(cfg),
		NewLatestStrategy(cfg),
	}
}

// NewLocationsStrategy queries {base}/locations, newest station first.
func NewLocationsStrategy(cfg OpenAQConfig) *OpenAQStrategy {
	params := url.Values{}
	params.Set("order_by", "id")
	params.Set("sort", "desc")
	return newOpenAQStrategy(cfg, "locations", "OpenAQ Locations", params)
}

// NewLatestStrategy queries {base}/latest.
func NewLatestStrategy(cfg OpenAQConfig) *OpenAQStrategy {
	return newOpenAQStrategy(cfg, "latest", "OpenAQ Latest", url.Values{})
}

func newOpenAQStrategy(cfg OpenAQConfig, name, source string, params url.Values) *OpenAQStrategy {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultOpenAQBaseURL
	}

	httpCfg := cfg.HTTP
	if httpCfg.Client == nil {
		httpCfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if httpCfg.Backoff.InitialInterval <= 0 {
		httpCfg.Backoff = BackoffConfig{
			MaxRetries:      1,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}

	return &OpenAQStrategy{
		name:     name,
		source:   source,
		endpoint: base + "/" + name,
		apiKey:   cfg.APIKey,
		params:   params,
		httpCfg:  httpCfg,
		circuit:  newCircuitBreaker("openaq-" + name),
	}
}

func (p *OpenAQStrategy) Name() string {
	return p.name
}

// openAQResult covers the fields both endpoints may return.
type openAQResult struct {
	Coordinates *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Name         string                   `json:"name"`
	Location     string                   `json:"location"`
	City         string                   `json:"city"`
	Country      json.RawMessage          `json:"country"`
	Measurements []airquality.Measurement `json:"measurements"`
}

func (p *OpenAQStrategy) Fetch(ctx context.Context, c airquality.Coordinate) (airquality.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range p.params {
			values[k] = v
		}
		values.Set("coordinates", formatCoordinate(c))
		values.Set("radius", strconv.Itoa(searchRadiusMeters))
		values.Set("limit", strconv.Itoa(resultLimit))

		u := fmt.Sprintf("%s?%s", p.endpoint, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-Key", p.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return airquality.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []openAQResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.Reading{}, fmt.Errorf("decode %s response: %w", p.name, err)
	}
	if len(payload.Results) == 0 {
		return airquality.Reading{}, airquality.ErrNoResults
	}

	return p.normalize(payload.Results[0], c), nil
}

// normalize maps an upstream result onto a Reading. Missing or zero
// coordinates fall back to the queried ones.
func (p *OpenAQStrategy) normalize(res openAQResult, c airquality.Coordinate) airquality.Reading {
	r := airquality.Reading{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Location:  firstNonEmpty(res.Name, res.Location, "Unknown"),
		City:      firstNonEmpty(res.City, "Unknown"),
		Country:   firstNonEmpty(countryName(res.Country), "Unknown"),
		Source:    p.source,
	}
	if res.Coordinates != nil {
		if res.Coordinates.Latitude != 0 {
			r.Latitude = res.Coordinates.Latitude
		}
		if res.Coordinates.Longitude != 0 {
			r.Longitude = res.Coordinates.Longitude
		}
	}
	r.ApplyMeasurements(res.Measurements)
	return r
}

// countryName accepts either a plain string or a v3 country object.
func countryName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return firstNonEmpty(obj.Name, obj.Code)
	}
	return ""
}

func formatCoordinate(c airquality.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
