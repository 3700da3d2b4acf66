package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Shortener shortens payment links for SMS templates. Shorten never
// fails: on any error it degrades to returning the original URL, so a
// broken shortening service cannot block webhook processing.
type Shortener interface {
	Shorten(ctx context.Context, url string) string
}

// Config holds URL shortener configuration
type Config struct {
	ServiceURL string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
}

type httpShortener struct {
	client   *http.Client
	cache    *redis.Client
	cfg      Config
	logger   *slog.Logger
	cacheTTL time.Duration
}

// New creates a Shortener backed by an external HTTP service with a
// Redis cache in front. cache may be nil, which disables caching.
func New(cfg Config, cache *redis.Client, logger *slog.Logger) Shortener {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &httpShortener{
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		cacheTTL: ttl,
	}
}

type shortenRequest struct {
	URL    string `json:"url"`
	APIKey string `json:"apiKey"`
}

type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// Shorten returns a shortened form of url, or url itself when the
// service is unconfigured, unreachable or answers in an unexpected shape.
func (s *httpShortener) Shorten(ctx context.Context, url string) string {
	if s.cfg.ServiceURL == "" || s.cfg.APIKey == "" {
		s.logger.Warn("url shortener not configured, using original url")
		return url
	}

	if cached := s.cacheGet(ctx, url); cached != "" {
		return cached
	}

	body, err := json.Marshal(shortenRequest{URL: url, APIKey: s.cfg.APIKey})
	if err != nil {
		return url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ServiceURL, bytes.NewReader(body))
	if err != nil {
		return url
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("url shortener request failed, using original url",
			slog.String("error", err.Error()),
		)
		return url
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("url shortener returned non-2xx, using original url",
			slog.Int("status", resp.StatusCode),
		)
		return url
	}

	var result shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.ShortURL == "" {
		s.logger.Warn("url shortener returned unexpected response, using original url")
		return url
	}

	s.cacheSet(ctx, url, result.ShortURL)
	return result.ShortURL
}

func (s *httpShortener) cacheGet(ctx context.Context, url string) string {
	if s.cache == nil {
		return ""
	}
	val, err := s.cache.Get(ctx, cacheKey(url)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("shortener cache read failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return val
}

func (s *httpShortener) cacheSet(ctx context.Context, url, short string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(url), short, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("shortener cache write failed", slog.String("error", err.Error()))
	}
}

func cacheKey(url string) string {
	return fmt.Sprintf("shorturl:%s", url)
}
