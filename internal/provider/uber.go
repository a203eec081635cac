package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/farecast/travel-backend/internal/domain"
)

const (
	defaultUberBaseURL  = "https://api.uber.com/v1.2"
	defaultUberTokenURL = "https://login.uber.com/oauth/v2/token"
)

// uberComfort maps an Uber product display name to a 0-10 comfort score.
// Unknown products default to 6.
var uberComfort = map[string]int{
	"UberGo":       6,
	"UberX":        7,
	"Uber Comfort": 8,
	"Uber Black":   9,
	"Uber SUV":     8,
	"Uber Pool":    5,
	"Uber Moto":    4,
	"Uber Auto":    5,
}

// cityCoordinates is the static geocoding table. Real geocoding is out of
// scope; unknown cities fall back to Delhi so the estimates call still has
// valid coordinates.
var cityCoordinates = map[string]struct{ lat, lng float64 }{
	"new delhi": {28.6139, 77.2090},
	"delhi":     {28.6139, 77.2090},
	"mumbai":    {19.0760, 72.8777},
	"bangalore": {12.9716, 77.5946},
	"chennai":   {13.0827, 80.2707},
	"kolkata":   {22.5726, 88.3639},
	"hyderabad": {17.3850, 78.4867},
	"pune":      {18.5204, 73.8567},
	"ahmedabad": {23.0225, 72.5714},
	"jaipur":    {26.9124, 75.7873},
	"agra":      {27.1767, 78.0081},
}

// UberConfig carries the credentials and endpoints for the Uber adapter.
// Zero-value URLs fall back to the production endpoints; tests point them at
// an httptest server.
type UberConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// Uber is the taxi adapter. It authenticates via OAuth client credentials
// and caches the access token until expiry. The token cache is the only
// shared mutable state in the adapter and is safe under concurrent Query
// calls: the fast path is mutex-guarded and refreshes are collapsed through
// singleflight so concurrent callers never race duplicate exchanges.
type Uber struct {
	cfg  UberConfig
	http *http.Client
	log  *slog.Logger

	mu      sync.Mutex
	token   string
	expiry  time.Time
	refresh singleflight.Group
}

// NewUber constructs the Uber adapter.
func NewUber(cfg UberConfig, log *slog.Logger) *Uber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultUberBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultUberTokenURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Uber{cfg: cfg, http: client, log: log}
}

func (a *Uber) Name() string { return "Uber" }

// Query returns one taxi option per Uber product with a price estimate.
// Auth and API failures are provider-local: they degrade to an empty result.
func (a *Uber) Query(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error) {
	if a.cfg.ClientID == "" || a.cfg.ClientSecret == "" {
		return nil, fmt.Errorf("uber: %w", ErrMisconfigured)
	}

	token, err := a.accessToken(ctx)
	if err != nil {
		a.log.Warn("uber: token refresh failed", "error", err)
		return nil, nil
	}

	origin := geocode(params.Origin)
	dest := geocode(params.Destination)

	prices, err := a.priceEstimates(ctx, token, origin, dest)
	if err != nil {
		a.log.Warn("uber: price estimates failed", "error", err)
		return nil, nil
	}
	times, err := a.timeEstimates(ctx, token, origin)
	if err != nil {
		a.log.Warn("uber: time estimates failed", "error", err)
		return nil, nil
	}

	// Pickup ETA per product, in seconds.
	etaByProduct := make(map[string]int, len(times))
	for _, t := range times {
		etaByProduct[t.ProductID] = t.Estimate
	}

	options := make([]domain.TravelOption, 0, len(prices))
	for _, p := range prices {
		price := p.LowEstimate
		if price == 0 {
			price = p.Estimate
		}
		eta := etaByProduct[p.ProductID]
		if eta == 0 {
			eta = 600 // assume a 10 minute pickup when no ETA is published
		}
		comfort, ok := uberComfort[p.DisplayName]
		if !ok {
			comfort = 6
		}

		options = append(options, domain.TravelOption{
			Mode:            domain.ModeTaxi,
			Provider:        a.Name(),
			DepartureTime:   time.Now().Add(time.Duration(eta) * time.Second),
			DurationMinutes: p.Duration / 60,
			Price:           price,
			ComfortScore:    comfort,
			ProviderDetails: map[string]any{
				"product_id":       p.ProductID,
				"service_type":     p.DisplayName,
				"currency":         p.CurrencyCode,
				"distance":         p.Distance,
				"min_estimate":     p.LowEstimate,
				"max_estimate":     p.HighEstimate,
				"surge_multiplier": p.SurgeMultiplier,
			},
		})
	}
	return options, nil
}

// Book requests a ride for the given option's product.
func (a *Uber) Book(ctx context.Context, option domain.TravelOption, passengers []domain.Passenger, requesterID uuid.UUID) (domain.ProviderBooking, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return domain.ProviderBooking{}, &BookingError{Provider: a.Name(), Err: err}
	}

	productID, _ := option.ProviderDetails["product_id"].(string)
	body, err := json.Marshal(map[string]any{
		"product_id": productID,
		"rider_id":   requesterID.String(),
		"seats":      len(passengers),
	})
	if err != nil {
		return domain.ProviderBooking{}, &BookingError{Provider: a.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/requests", strings.NewReader(string(body)))
	if err != nil {
		return domain.ProviderBooking{}, &BookingError{Provider: a.Name(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return domain.ProviderBooking{}, &BookingError{Provider: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	var payload map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ProviderBooking{}, &BookingError{
			Provider: a.Name(),
			Payload:  payload,
			Err:      fmt.Errorf("ride request returned status %d", resp.StatusCode),
		}
	}

	// A success response without a request_id is a malformed confirmation.
	// Treat it as a failed booking rather than guessing a confirmed state.
	requestID, _ := payload["request_id"].(string)
	if requestID == "" {
		return domain.ProviderBooking{}, &BookingError{
			Provider: a.Name(),
			Payload:  payload,
			Err:      fmt.Errorf("confirmation missing request_id"),
		}
	}

	status, _ := payload["status"].(string)
	if status == "" {
		status = "confirmed"
	}
	return domain.ProviderBooking{Reference: requestID, Status: status, Data: payload}, nil
}

// accessToken returns a valid OAuth token, refreshing through singleflight
// when the cached one has expired.
func (a *Uber) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.token != "" && time.Now().Before(a.expiry) {
		token := a.token
		a.mu.Unlock()
		return token, nil
	}
	a.mu.Unlock()

	v, err, _ := a.refresh.Do("token", func() (any, error) {
		// Re-check under the lock: a concurrent caller may have refreshed
		// while we waited on the singleflight slot.
		a.mu.Lock()
		if a.token != "" && time.Now().Before(a.expiry) {
			token := a.token
			a.mu.Unlock()
			return token, nil
		}
		a.mu.Unlock()

		token, expiresIn, err := a.exchangeCredentials(ctx)
		if err != nil {
			return "", err
		}

		a.mu.Lock()
		a.token = token
		// Refresh one minute early so in-flight requests never carry a
		// token that expires mid-call.
		a.expiry = time.Now().Add(time.Duration(expiresIn)*time.Second - time.Minute)
		a.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchangeCredentials performs the OAuth client-credentials exchange.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; a 4xx means the credentials are wrong and retrying is pointless.
func (a *Uber) exchangeCredentials(ctx context.Context) (token string, expiresIn int, err error) {
	form := url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"ride.request"},
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := a.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
		}

		var body struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode token response: %w", err)
		}
		if body.AccessToken == "" {
			return fmt.Errorf("token response missing access_token")
		}
		token = body.AccessToken
		expiresIn = body.ExpiresIn
		return nil
	})
	return token, expiresIn, err
}

type uberPrice struct {
	ProductID       string  `json:"product_id"`
	DisplayName     string  `json:"display_name"`
	CurrencyCode    string  `json:"currency_code"`
	Distance        float64 `json:"distance"`
	Duration        int     `json:"duration"` // trip duration in seconds
	Estimate        float64 `json:"estimate"`
	LowEstimate     float64 `json:"low_estimate"`
	HighEstimate    float64 `json:"high_estimate"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
}

type uberTime struct {
	ProductID string `json:"product_id"`
	Estimate  int    `json:"estimate"` // pickup ETA in seconds
}

func (a *Uber) priceEstimates(ctx context.Context, token string, origin, dest coordinates) ([]uberPrice, error) {
	q := url.Values{
		"start_latitude":  {fmt.Sprintf("%f", origin.lat)},
		"start_longitude": {fmt.Sprintf("%f", origin.lng)},
		"end_latitude":    {fmt.Sprintf("%f", dest.lat)},
		"end_longitude":   {fmt.Sprintf("%f", dest.lng)},
	}
	var body struct {
		Prices []uberPrice `json:"prices"`
	}
	if err := a.getJSON(ctx, token, "/estimates/price", q, &body); err != nil {
		return nil, err
	}
	return body.Prices, nil
}

func (a *Uber) timeEstimates(ctx context.Context, token string, origin coordinates) ([]uberTime, error) {
	q := url.Values{
		"start_latitude":  {fmt.Sprintf("%f", origin.lat)},
		"start_longitude": {fmt.Sprintf("%f", origin.lng)},
	}
	var body struct {
		Times []uberTime `json:"times"`
	}
	if err := a.getJSON(ctx, token, "/estimates/time", q, &body); err != nil {
		return nil, err
	}
	return body.Times, nil
}

func (a *Uber) getJSON(ctx context.Context, token, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Language", "en_US")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type coordinates struct{ lat, lng float64 }

// geocode resolves a city name from the static table, defaulting to Delhi.
func geocode(city string) coordinates {
	if c, ok := cityCoordinates[strings.ToLower(strings.TrimSpace(city))]; ok {
		return coordinates{c.lat, c.lng}
	}
	return coordinates{28.6139, 77.2090}
}
