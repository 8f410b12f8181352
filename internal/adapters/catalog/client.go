package catalog

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"smart_places/internal/adapters/observability"
	"smart_places/internal/domain"
)

const maxAttempts = 4

// ErrUnauthorized is a bad or missing API key; it matches domain.ErrForbidden.
var ErrUnauthorized = fmt.Errorf("catalog feed unauthorized: %w", domain.ErrForbidden)

// Client reads venues from a remote catalog feed:
//
//	GET {base}/venues                    -> ["id", ...] or [{"id": ...}, ...]
//	GET {base}/venues/{id}               -> venue object
//	GET {base}/venues/{id}/reviews?limit -> [review, ...]
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("feed base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		cb:   newBreaker("catalog-feed"),
	}, nil
}

// newBreaker opens after 5 consecutive failed calls (each already retried),
// and probes again after 30s. Not-found and forbidden answers count as successes.
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	observability.FeedBreakerState.Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			observability.FeedBreakerState.Set(float64(to))
		},
	})
}

func (c *Client) ListVenueIDs(ctx context.Context) ([]string, error) {
	var raw []any
	if err := c.get(ctx, "venues", c.base+"/venues", &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, it := range raw {
		switch v := it.(type) {
		case string:
			ids = append(ids, v)
		case float64:
			ids = append(ids, strconv.FormatFloat(v, 'f', -1, 64))
		case map[string]any:
			if id := recordID(v); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (c *Client) GetVenue(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	return out, c.get(ctx, "venue", c.base+"/venues/"+url.PathEscape(id), &out)
}

func (c *Client) GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/venues/%s/reviews?limit=%d", c.base, url.PathEscape(id), count)
	var out []map[string]any
	return out, c.get(ctx, "reviews", u, &out)
}

// get runs one rate-limited, retried fetch through the breaker and decodes the body into out.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	body, err := c.cb.Execute(func() ([]byte, error) { return c.fetch(ctx, endpoint, u) })
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("catalog feed unavailable: %w", err)
		}
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// fetch retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) fetch(ctx context.Context, endpoint, u string) ([]byte, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "smart-places/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveFeed(endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveFeed(endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return b, err

		case http.StatusNoContent:
			resp.Body.Close()
			return nil, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, domain.ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("catalog feed %s: status %d", endpoint, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("catalog feed %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After in seconds or HTTP-date form; 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + time.Duration(0.5*float64(b[0])/255*float64(base))
}
