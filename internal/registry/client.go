package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/pkg/circuitbreaker"
	"github.com/walterreed/referral-api/pkg/logger"
)

// NPPES API parameters. The registry is public, idempotent and rate limited,
// so lookups are cached briefly and throttled client-side.
const (
	defaultBaseURL    = "https://npiregistry.cms.hhs.gov/api/"
	apiVersion        = "2.1"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 1 * time.Second
	defaultCacheTTL   = 5 * time.Minute
)

// ClientConfig configures the NPPES client.
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	RateLimit   rate.Limit
	RateBurst   int
	CacheTTL    time.Duration
	MaxFailures int
}

// Client is the HTTP implementation of Lookup against the NPPES registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	cache      *cache.Cache
	log        *logger.Logger

	// OnRetry is invoked once per retry attempt; wired to metrics.
	OnRetry func()
	// OnLookup is invoked after every uncached lookup with its result
	// ("ok", "unavailable" or "malformed") and duration; wired to metrics.
	OnLookup func(result string, elapsed time.Duration)
}

// NewClient creates an NPPES registry client.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = rate.Limit(5)
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		limiter:    rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "nppes",
			MaxFailures: cfg.MaxFailures,
		}),
		cache: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:   log.WithComponent("registry"),
	}
}

// nppesResponse mirrors the registry's wire format.
type nppesResponse struct {
	ResultCount *int          `json:"result_count"`
	Results     []nppesResult `json:"results"`
}

type nppesResult struct {
	Number string `json:"number"`
	Basic  struct {
		FirstName  string `json:"first_name"`
		MiddleName string `json:"middle_name"`
		LastName   string `json:"last_name"`
		Credential string `json:"credential"`
		Status     string `json:"status"`
	} `json:"basic"`
	Addresses []struct {
		AddressPurpose string `json:"address_purpose"`
		City           string `json:"city"`
		State          string `json:"state"`
	} `json:"addresses"`
}

// Search looks up individual providers by name. Transient failures (network
// errors, 429, 5xx) are retried with exponential backoff up to the bounded
// attempt count; other 4xx responses fail immediately. Both outcomes surface
// as ErrUnavailable. A payload that cannot be decoded surfaces as
// ErrMalformedResponse.
func (c *Client) Search(ctx context.Context, q Query) ([]model.RegistryRecord, error) {
	key := cacheKey(q)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]model.RegistryRecord), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	started := time.Now()
	var records []model.RegistryRecord
	err := c.breaker.Execute(func() error {
		var execErr error
		records, execErr = c.search(ctx, q)
		return execErr
	})
	c.reportLookup(err, time.Since(started))
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	c.cache.Set(key, records, cache.DefaultExpiration)
	return records, nil
}

func (c *Client) reportLookup(err error, elapsed time.Duration) {
	if c.OnLookup == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, ErrMalformedResponse):
		result = "malformed"
	case err != nil:
		result = "unavailable"
	}
	c.OnLookup(result, elapsed)
}

func (c *Client) search(ctx context.Context, q Query) ([]model.RegistryRecord, error) {
	reqURL, err := c.buildURL(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if c.OnRetry != nil {
				c.OnRetry()
			}
			wait := c.backoff * time.Duration(1<<(attempt-1))
			c.log.Warn("retrying registry lookup", "attempt", attempt, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		records, retryable, err := c.doRequest(ctx, reqURL)
		if err == nil {
			return records, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("registry lookup failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (records []model.RegistryRecord, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: registry returned %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: registry returned %d", ErrUnavailable, resp.StatusCode)
	}

	var payload nppesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.ResultCount == nil {
		return nil, false, fmt.Errorf("%w: missing result_count", ErrMalformedResponse)
	}

	records = make([]model.RegistryRecord, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.Number == "" {
			return nil, false, fmt.Errorf("%w: record without NPI", ErrMalformedResponse)
		}
		rec := model.RegistryRecord{
			NPI:        r.Number,
			FirstName:  r.Basic.FirstName,
			MiddleName: r.Basic.MiddleName,
			LastName:   r.Basic.LastName,
			Credential: r.Basic.Credential,
			Active:     r.Basic.Status == "A",
		}
		// Prefer the practice location over the mailing address.
		for _, addr := range r.Addresses {
			if addr.AddressPurpose == "LOCATION" || rec.City == "" {
				rec.City = addr.City
				rec.State = addr.State
			}
			if addr.AddressPurpose == "LOCATION" {
				break
			}
		}
		records = append(records, rec)
	}

	return records, false, nil
}

func (c *Client) buildURL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("version", apiVersion)
	params.Set("first_name", strings.TrimSpace(q.FirstName))
	params.Set("last_name", strings.TrimSpace(q.LastName))
	params.Set("enumeration_type", "NPI-1")
	params.Set("limit", "10")
	if q.City != "" {
		params.Set("city", strings.TrimSpace(q.City))
	}
	if q.State != "" {
		params.Set("state", strings.ToUpper(strings.TrimSpace(q.State)))
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func cacheKey(q Query) string {
	return strings.ToLower(strings.Join([]string{q.FirstName, q.LastName, q.City, q.State}, "|"))
}
