package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/wavemarine/deckworth/internal/models"
)

const (
	defaultBaseURL = "https://api.yachtbroker.org"

	// upstreamLimit asks the feed for a wider pool than the final cap so the
	// refined client-side filters still have material to work with.
	upstreamLimit = 50

	defaultTimeout = 15 * time.Second
)

// Config holds listings source credentials and tuning.
type Config struct {
	BaseURL  string
	APIKey   string
	BrokerID string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// ConfigFromEnv reads listings credentials and tuning from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:  os.Getenv("IYBA_BASE_URL"),
		APIKey:   os.Getenv("IYBA_KEY"),
		BrokerID: os.Getenv("IYBA_BROKER_ID"),
	}
	if v := os.Getenv("IYBA_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.Timeout = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("LISTINGS_CACHE_TTL_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.CacheTTL = time.Duration(seconds) * time.Second
		}
	}
	return cfg
}

// Service queries the brokerage listings feed and converts responses into
// ranked comparable sets. Failures degrade to an empty set; they are never
// surfaced as errors to the pipeline.
type Service struct {
	cfg    Config
	client *http.Client
	cache  *searchCache
	logger *slog.Logger
}

// NewService constructs a listings service. Missing credentials are allowed:
// searches then return empty sets and the pipeline falls back to synthetic
// evidence.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if !hasCredentials(cfg) {
		logger.Warn("listings credentials not configured, real market data will be unavailable")
	}

	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  newSearchCache(cfg.CacheTTL),
		logger: logger,
	}
}

func hasCredentials(cfg Config) bool {
	return cfg.APIKey != "" && cfg.BrokerID != ""
}

// HasCredentials reports whether the upstream feed is reachable at all.
func (s *Service) HasCredentials() bool {
	return hasCredentials(s.cfg)
}

// SearchForVessel finds ranked comparables for a vessel profile.
func (s *Service) SearchForVessel(ctx context.Context, profile models.VesselProfile) []models.Comparable {
	return s.SearchComparables(ctx, ParamsForVessel(profile))
}

// SearchComparables runs a filtered comparable search, serving repeated
// identical queries from the TTL cache.
func (s *Service) SearchComparables(ctx context.Context, params SearchParams) []models.Comparable {
	if !s.HasCredentials() {
		return nil
	}

	key := params.CacheKey()
	if cached, ok := s.cache.get(key); ok {
		s.logger.Debug("serving comparables from cache", "key", key, "count", len(cached))
		return cached
	}

	raw, err := s.fetch(ctx, params)
	if err != nil {
		s.logger.Error("listings fetch failed", "error", err)
		return nil
	}

	comps := make([]models.Comparable, 0, len(raw))
	for _, item := range raw {
		normalized := Normalize(item)
		if normalized == nil {
			continue
		}
		if params.Matches(*normalized) {
			comps = append(comps, *normalized)
		}
	}

	ranked := Rank(comps, params)
	s.cache.set(key, ranked)

	s.logger.Info("comparable search complete",
		"raw_listings", len(raw),
		"matched", len(comps),
		"returned", len(ranked))

	return ranked
}

func (s *Service) fetch(ctx context.Context, params SearchParams) ([]RawListing, error) {
	values := url.Values{}
	values.Set("key", s.cfg.APIKey)
	values.Set("id", s.cfg.BrokerID)
	values.Set("gallery", "false")
	values.Set("engines", "true")
	values.Set("generators", "false")
	values.Set("textblocks", "false")
	values.Set("media", "false")
	values.Set("status", "On,Under Contract")
	values.Set("limit", strconv.Itoa(upstreamLimit))

	if params.Brand != "" {
		values.Set("brand", params.Brand)
	}
	if params.Model != "" {
		values.Set("model", params.Model)
	}
	if params.Year != nil {
		values.Set("year_min", strconv.Itoa(*params.Year-yearWindow))
		values.Set("year_max", strconv.Itoa(*params.Year+yearWindow))
	}
	if params.LengthMin != nil {
		values.Set("length_min", strconv.Itoa(int(math.Floor(*params.LengthMin))))
	}
	if params.LengthMax != nil {
		values.Set("length_max", strconv.Itoa(int(math.Ceil(*params.LengthMax))))
	}
	if params.EngineType != "" {
		values.Set("fuel", params.EngineType)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.cfg.BaseURL+"/listings?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build listings request: %w", err)
	}
	req.Header.Set("User-Agent", "deckworth/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings api returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listings response: %w", err)
	}

	return decodeListings(body)
}

// decodeListings tolerates the feed's historical response envelopes: an
// object with "results", an object with "data", or a bare array.
func decodeListings(body []byte) ([]RawListing, error) {
	var envelope struct {
		Results []RawListing `json:"results"`
		Data    []RawListing `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Results != nil {
			return envelope.Results, nil
		}
		if envelope.Data != nil {
			return envelope.Data, nil
		}
	}

	var items []RawListing
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unrecognized listings payload: %w", err)
	}
	return items, nil
}

// SmokeTest runs a known-good search against the live feed for operational
// verification.
func (s *Service) SmokeTest(ctx context.Context) (int, []models.Comparable) {
	comps := s.SearchComparables(ctx, SearchParams{
		Brand:      "Sunseeker",
		Year:       models.Int(2019),
		EngineType: "diesel",
		Limit:      5,
	})

	sample := comps
	if len(sample) > 3 {
		sample = sample[:3]
	}
	return len(comps), sample
}
