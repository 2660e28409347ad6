// internal/adapters/playstore/client.go
package playstore

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

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"play_reviews/internal/adapters/observability"
	"play_reviews/internal/domain"
)

const DefaultBaseURL = "https://play.google.com"

type Options struct {
	BaseURL     string
	RPS         int
	MaxRetries  int           // attempts after the first one
	BackoffBase time.Duration // first retry delay, doubled per attempt
	Timeout     time.Duration
	Decoder     PageDecoder
}

type Client struct {
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	retries int
	backoff time.Duration
	dec     PageDecoder
}

func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 200 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Decoder == nil {
		o.Decoder = BatchExecuteDecoder{}
	}
	return &Client{
		base:    strings.TrimRight(o.BaseURL, "/"),
		hc:      &http.Client{Timeout: o.Timeout},
		rl:      rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		retries: o.MaxRetries,
		backoff: o.BackoffBase,
		dec:     o.Decoder,
	}
}

// ---- Public API ----

// FetchPage posts one UsvDTd request and decodes the response.
func (c *Client) FetchPage(ctx context.Context, pr domain.PageRequest) (domain.ReviewPage, error) {
	body := ReviewsRequest{
		AppID: pr.AppID,
		Count: pr.Count,
		Sort:  SortNewest,
		Token: tokenValue(pr.Token),
	}.Encode()

	u := c.base + reviewsPath + "?" + reviewsQuery(pr.Language, pr.Country).Encode()
	raw, err := c.do(ctx, "reviews", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return domain.ReviewPage{}, err
	}
	page, err := c.dec.DecodePage(raw)
	if err != nil {
		return domain.ReviewPage{}, fmt.Errorf("decode reviews page (lang=%s): %w", pr.Language, err)
	}
	return page, nil
}

// AppDetails probes the app's store page. A missing app is ErrNotFound.
func (c *Client) AppDetails(ctx context.Context, appID string) (string, error) {
	u := c.base + detailsPath + "?id=" + url.QueryEscape(appID)
	raw, err := c.do(ctx, "details", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse details page: %w", err)
	}
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return title, nil
}

// ---- Internals ----

var (
	ErrNotFound    = fmt.Errorf("playstore: %w", domain.ErrNotFound)
	ErrRateLimited = errors.New("playstore: rate limited")
)

func tokenValue(t domain.PageToken) string {
	if t.IsFirstPage() {
		return ""
	}
	return t.Value
}

// do sends a request with client-side rate limiting and bounded retries, and returns the body.
// Retries on network errors, 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.retries; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}
		// build a fresh request each attempt
		req, err := build()
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "play-reviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("playstore", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < c.retries && sleepCtx(ctx, c.delay(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("playstore", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s body: %w", endpoint, err)
			}
			return b, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = c.delay(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: remote %d", ErrRateLimited, resp.StatusCode)
			}
			if i < c.retries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%s: retries exhausted: %w", endpoint, lastErr)

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func (c *Client) delay(i int) time.Duration { return backoff(c.backoff, i) }

// sleepCtx waits for d or returns early if ctx is done.
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles base each attempt (base, 2*base, 4*base...) with up to +50% jitter.
func backoff(base time.Duration, i int) time.Duration {
	d := time.Duration(1<<i) * base
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return d
	}
	f := float64(b[0]) / 255.0
	return d + time.Duration(0.5*f*float64(d))
}
