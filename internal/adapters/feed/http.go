package feed

// http.go: feed JSON paginado de anuncios.
//
// GET {base}/listings?limit=N[&cursor=C] → {"data": [...], "next_cursor": "..."}
// Un next_cursor vacío indica la última página. El rate limiter (token bucket)
// controla el ritmo y doWithRetry reintenta 429/5xx con backoff exponencial.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"golang.org/x/time/rate"
)

const (
	listingsPath = "/listings"
	pageSize     = 100
	maxPages     = 1000

	defaultRatePerSec = 5
	maxRetries        = 3
	baseRetryWait     = 500 * time.Millisecond
)

type listingsPage struct {
	Data       []domain.Listing `json:"data"`
	NextCursor string           `json:"next_cursor"`
}

// HTTPProvider implementa ports.ListingProvider contra un feed HTTP.
type HTTPProvider struct {
	http     *http.Client
	base     string
	platform string
	limiter  *rate.Limiter
	retry    time.Duration
}

// NewHTTPProvider crea un provider para el feed en base.
// ratePerSec <= 0 usa el límite por defecto. platform rellena el campo
// Platform de los anuncios que no lo traigan.
func NewHTTPProvider(base string, ratePerSec float64, platform string) *HTTPProvider {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	return &HTTPProvider{
		http:     &http.Client{Timeout: 10 * time.Second},
		base:     base,
		platform: platform,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), 2),
		retry:    baseRetryWait,
	}
}

// WithRetryWait cambia la espera base entre reintentos.
func (p *HTTPProvider) WithRetryWait(d time.Duration) *HTTPProvider {
	cp := *p
	cp.retry = d
	return &cp
}

// FetchListings descarga todas las páginas del feed.
func (p *HTTPProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	var all []domain.Listing
	cursor := ""
	seen := map[string]bool{}

	for pages := 0; ; pages++ {
		if pages == maxPages {
			slog.Warn("feed page limit reached", "source", p.base, "pages", pages)
			break
		}
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page listingsPage
		if err := p.get(ctx, p.base+listingsPath+"?"+q.Encode(), &page); err != nil {
			return nil, fmt.Errorf("feed.FetchListings: %w", err)
		}
		all = append(all, page.Data...)

		slog.Debug("fetched listings page",
			"count", len(page.Data),
			"total", len(all),
			"has_more", page.NextCursor != "",
		)

		if page.NextCursor == "" {
			break
		}
		if seen[page.NextCursor] || page.NextCursor == cursor {
			slog.Warn("feed cursor repeated, stopping pagination", "source", p.base, "cursor", page.NextCursor)
			break
		}
		seen[cursor] = true
		cursor = page.NextCursor
	}

	listings := normalize(all, p.platform)
	slog.Info("listings fetched", "source", p.base, "total", len(listings))
	return listings, nil
}

// get hace un GET con rate limiting y retries.
func (p *HTTPProvider) get(ctx context.Context, u string, out any) error {
	return p.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return p.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial, respetando el contexto.
func (p *HTTPProvider) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if ctx.Err() != nil || attempt == maxRetries {
				return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			p.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server status %d after %d attempts", resp.StatusCode, attempt+1)
			}
			slog.Warn("feed request failed, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			p.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (p *HTTPProvider) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * p.retry
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
