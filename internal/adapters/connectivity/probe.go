// Package connectivity answers "is the network reachable right now?".
package connectivity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/domain"
)

// HTTPProbe sends a HEAD request to a well-known URL. Any HTTP response means
// online; a transport failure means offline.
type HTTPProbe struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

func NewHTTPProbe(url string, rps int, timeout time.Duration) (*HTTPProbe, error) {
	if url == "" {
		return nil, fmt.Errorf("probe URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPProbe{
		url: url,
		hc:  &http.Client{Timeout: timeout},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Online returns an error wrapping domain.ErrProbeUnavailable when no answer
// could be obtained at all (limiter or request setup failed, ctx done).
func (p *HTTPProbe) Online(ctx context.Context) (bool, error) {
	if err := p.rl.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrProbeUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrProbeUnavailable, err)
	}
	req.Header.Set("User-Agent", "visit-polzela/1.0")

	start := time.Now()
	resp, err := p.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("%w: %v", domain.ErrProbeUnavailable, ctx.Err())
		}
		observability.ObserveExternal("connectivity", "head", 0, time.Since(start))
		return false, nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	observability.ObserveExternal("connectivity", "head", resp.StatusCode, time.Since(start))
	return true, nil
}

// Static always reports the same state.
type Static bool

func (s Static) Online(context.Context) (bool, error) { return bool(s), nil }
