package healthcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Timeout bounds a single probe. It is not configurable; the proxy is
// local, so a slower answer counts as a failure.
const Timeout = 500 * time.Millisecond

// Observation is the outcome of one probe. It is consumed once by the
// failover loop and never stored.
type Observation struct {
	Time       time.Time
	Healthy    bool
	Latency    time.Duration
	StatusCode int
	Err        error
}

// Probe checks the local proxy's liveness endpoint.
type Probe struct {
	url    string
	client *http.Client
}

// Target builds the liveness URL for a proxy listening on the loopback.
func Target(port int, path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
}

// NewProbe creates a probe for url. Every check opens a fresh connection.
func NewProbe(url string) *Probe {
	return &Probe{
		url: url,
		client: &http.Client{
			Timeout: Timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// URL returns the liveness endpoint being probed.
func (p *Probe) URL() string {
	return p.url
}

// Check sends one GET to the liveness endpoint. Only 200 OK within Timeout
// is healthy; refused connections, timeouts, cancellation and any other
// status are reported as unhealthy. Check never retries.
func (p *Probe) Check(ctx context.Context) Observation {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	start := time.Now()
	obs := Observation{Time: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		obs.Err = err
		return obs
	}

	res, err := p.client.Do(req)
	obs.Latency = time.Since(start)
	if err != nil {
		obs.Err = err
		return obs
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))

	obs.StatusCode = res.StatusCode
	obs.Healthy = res.StatusCode == http.StatusOK
	if !obs.Healthy {
		obs.Err = fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return obs
}
