// Package weather proxies current conditions for a US ZIP code. Lookups go
// through zippopotam.us for coordinates and open-meteo for the forecast;
// any failure degrades to a random placeholder so callers always get a
// renderable report.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

const (
	DefaultGeocodeURL  = "https://api.zippopotam.us/us/"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultTimeout     = 4 * time.Second

	SourceLive        = "live"
	SourcePlaceholder = "placeholder"
)

var (
	ErrInvalidZIP = errors.New("invalid zip code")
	errNoPlaces   = errors.New("zip code has no places")

	zipPattern = regexp.MustCompile(`^\d{5}$`)
)

// Report is what the fridge displays. Temperature is in Fahrenheit.
type Report struct {
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Class       string `json:"class"`
	Source      string `json:"source"`
}

var placeholders = []Report{
	{Temperature: 75, Condition: "Sunny", Class: "sunny"},
	{Temperature: 65, Condition: "Cloudy", Class: "cloudy"},
	{Temperature: 55, Condition: "Rainy", Class: "rain"},
	{Temperature: 32, Condition: "Snowy", Class: "snow"},
	{Temperature: 70, Condition: "Clear", Class: "sunny"},
}

// Client fetches live weather.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	timeout     time.Duration
	attempts    uint
	pick        func(n int) int
	logger      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithEndpoints points the client at alternative geocode and forecast URLs.
// The geocode URL is used as a prefix for the ZIP code.
func WithEndpoints(geocodeURL, forecastURL string) Option {
	return func(cl *Client) {
		cl.geocodeURL = geocodeURL
		cl.forecastURL = forecastURL
	}
}

// WithTimeout bounds a whole lookup, retries included.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithPicker replaces the random index source for placeholders.
func WithPicker(pick func(n int) int) Option {
	return func(cl *Client) { cl.pick = pick }
}

// NewClient creates a weather client with one retry per upstream call.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		geocodeURL:  DefaultGeocodeURL,
		forecastURL: DefaultForecastURL,
		timeout:     DefaultTimeout,
		attempts:    2,
		pick:        rand.IntN,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns live conditions for zip, or a placeholder on any failure.
func (c *Client) Current(ctx context.Context, zip string) Report {
	report, err := c.Lookup(ctx, zip)
	if err != nil {
		c.logger.Debug().Err(err).Str("zip", zip).Msg("weather lookup failed, using placeholder")
		return c.Placeholder()
	}
	return report
}

// Placeholder picks a random canned report.
func (c *Client) Placeholder() Report {
	r := placeholders[c.pick(len(placeholders))]
	r.Source = SourcePlaceholder
	return r
}

// Lookup fetches live conditions, returning an error instead of falling back.
func (c *Client) Lookup(ctx context.Context, zip string) (Report, error) {
	if !zipPattern.MatchString(zip) {
		return Report{}, ErrInvalidZIP
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lat, lon, err := c.geocode(ctx, zip)
	if err != nil {
		return Report{}, err
	}

	temp, code, err := c.forecast(ctx, lat, lon)
	if err != nil {
		return Report{}, err
	}

	condition, class := Classify(code)
	return Report{
		Temperature: int(math.Round(temp)),
		Condition:   condition,
		Class:       class,
		Source:      SourceLive,
	}, nil
}

type geocodeResponse struct {
	Places []struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

func (c *Client) geocode(ctx context.Context, zip string) (float64, float64, error) {
	var body geocodeResponse
	if err := c.getJSON(ctx, c.geocodeURL+url.PathEscape(zip), &body); err != nil {
		return 0, 0, fmt.Errorf("geocode: %w", err)
	}
	if len(body.Places) == 0 {
		return 0, 0, errNoPlaces
	}

	lat, err := strconv.ParseFloat(body.Places[0].Latitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(body.Places[0].Longitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode longitude: %w", err)
	}
	return lat, lon, nil
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (c *Client) forecast(ctx context.Context, lat, lon float64) (float64, int, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", "fahrenheit")

	var body forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+q.Encode(), &body); err != nil {
		return 0, 0, fmt.Errorf("forecast: %w", err)
	}
	if body.CurrentWeather == nil {
		return 0, 0, errors.New("forecast: missing current_weather")
	}
	return body.CurrentWeather.Temperature, body.CurrentWeather.WeatherCode, nil
}

// getJSON GETs rawURL and decodes the body into out. Server errors and
// transport failures are retried; client errors are not.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("unexpected status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// Classify maps an open-meteo weather code to a label and a scene class.
func Classify(code int) (condition, class string) {
	switch {
	case code == 0:
		return "Clear", "sunny"
	case code >= 1 && code <= 3:
		return "Cloudy", "cloudy"
	case code >= 51 && code <= 67:
		return "Rainy", "rain"
	case code >= 71 && code <= 77:
		return "Snowy", "snow"
	case code >= 80 && code <= 99:
		return "Stormy", "rain"
	default:
		return "Partly Cloudy", "cloudy"
	}
}
