package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/vault-analytics/internal/config"
	"github.com/vault-analytics/internal/logging"
)

// RequestKind selects which per-address document the info endpoint returns.
type RequestKind string

const (
	// KindVaultDetails fetches the vault detail document, keyed by vault address.
	KindVaultDetails RequestKind = "vaultDetails"
	// KindUserFills fetches the fill history, keyed by user address.
	KindUserFills RequestKind = "userFills"
)

// bodyField is the request body key carrying the address, and the key under
// which the address is injected into object-shaped responses.
func (k RequestKind) bodyField() string {
	if k == KindUserFills {
		return "user"
	}
	return "vaultAddress"
}

// retryableStatus lists HTTP statuses that are retried with backoff.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches per-address documents from the venue under a global
// concurrency ceiling, with per-attempt timeouts and exponential backoff.
type Client struct {
	httpClient     *http.Client
	infoURL        string
	vaultsURL      string
	maxRetries     int
	initialBackoff time.Duration
	totalTimeout   time.Duration
	slots          *semaphore.Weighted
	pacer          *rate.Limiter // nil when pacing is disabled
}

// NewClient creates a venue client from configuration.
func NewClient(cfg *config.VenueConfig) *Client {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 2
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	totalTimeout := cfg.TotalTimeout
	if totalTimeout <= 0 {
		totalTimeout = 20 * time.Second
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}

	var pacer *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: readTimeout,
			},
		},
		infoURL:        cfg.InfoURL,
		vaultsURL:      cfg.VaultsURL,
		maxRetries:     maxRetries,
		initialBackoff: backoff,
		totalTimeout:   totalTimeout,
		slots:          semaphore.NewWeighted(int64(concurrency)),
		pacer:          pacer,
	}
}

// FetchAll fetches one document per address, bounded by the admission slot
// count. It returns exactly one Outcome per address, positionally aligned
// with the input regardless of completion order. It never returns an error:
// every per-address fault, including a panic inside a task, is captured as a
// failure Outcome so one address can never abort the batch.
func (c *Client) FetchAll(ctx context.Context, kind RequestKind, addresses []string) []Outcome {
	outcomes := make([]Outcome, len(addresses))
	var wg sync.WaitGroup

	for i, address := range addresses {
		wg.Add(1)
		go func(i int, address string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logging.FromContext(ctx).Errorf("unhandled fault fetching %s for %s: %v", kind, address, r)
					outcomes[i] = Outcome{
						Address: address,
						Err:     &FetchError{Kind: FailureException, Detail: fmt.Sprint(r)},
					}
				}
			}()
			outcomes[i] = c.fetchWithRetry(ctx, kind, address)
		}(i, address)
	}

	wg.Wait()
	return outcomes
}

// fetchWithRetry drives the per-address attempt state machine:
// ATTEMPT(n) -> SUCCESS | RETRY(n+1) | FAILURE, n in [1, maxRetries].
func (c *Client) fetchWithRetry(ctx context.Context, kind RequestKind, address string) Outcome {
	logger := logging.FromContext(ctx)
	backoff := c.initialBackoff

	payload, err := json.Marshal(map[string]string{
		"type":           string(kind),
		kind.bodyField(): address,
	})
	if err != nil {
		return Outcome{Address: address, Err: &FetchError{Kind: FailureException, Detail: err.Error()}}
	}

	var lastErr *FetchError
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		status, body, attemptErr := c.doAttempt(ctx, payload)

		switch {
		case attemptErr != nil:
			lastErr = classifyAttemptError(attemptErr)
			if attempt == c.maxRetries {
				return Outcome{Address: address, Err: lastErr}
			}
			logger.Warnf("retrying %s fetch for %s after %s due to %s", kind, address, backoff, lastErr.Kind)

		case status == http.StatusOK:
			return c.parseSuccess(kind, address, body)

		case retryableStatus[status] && attempt < c.maxRetries:
			lastErr = &FetchError{Kind: FailureHTTP, Status: status, Detail: string(body)}
			logger.Warnf("retrying %s fetch for %s after %s due to HTTP %d", kind, address, backoff, status)

		default:
			return Outcome{
				Address: address,
				Err:     &FetchError{Kind: FailureHTTP, Status: status, Detail: string(body)},
			}
		}

		if !c.sleep(ctx, backoff) {
			if lastErr == nil {
				lastErr = &FetchError{Kind: FailureException, Detail: ctx.Err().Error()}
			}
			return Outcome{Address: address, Err: lastErr}
		}
		backoff *= 2
	}

	// Unreachable if the state machine above is total.
	return Outcome{Address: address, Err: &FetchError{Kind: FailureUnknown}}
}

// doAttempt performs a single admission-bounded request. The slot is held
// only for the duration of the request, never across the backoff sleep.
func (c *Client) doAttempt(ctx context.Context, payload []byte) (status int, body []byte, err error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return 0, nil, err
	}
	defer c.slots.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, c.totalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.infoURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

// parseSuccess decodes a 200 body. Object bodies get the requested address
// injected under the request kind's body field so the output is
// self-describing; array bodies (userFills) are kept as-is.
func (c *Client) parseSuccess(kind RequestKind, address string, body []byte) Outcome {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Outcome{
			Address: address,
			Err:     &FetchError{Kind: FailureException, Detail: fmt.Sprintf("parse response: %v", err)},
		}
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		if _, ok := v[kind.bodyField()]; !ok {
			v[kind.bodyField()] = address
		}
		return Outcome{Address: address, Doc: Document(v)}
	case []interface{}:
		return Outcome{Address: address, Items: v}
	default:
		logging.GetGlobalLogger().Warnf("unexpected %s body shape %T for %s", kind, parsed, address)
		return Outcome{Address: address, Doc: Document{}}
	}
}

// sleep waits for the backoff duration, honoring context cancellation.
// It reports whether the full duration elapsed.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// classifyAttemptError maps a transport-level error to a failure kind.
func classifyAttemptError(err error) *FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{Kind: FailureTimeout, Detail: err.Error()}
	}
	return &FetchError{Kind: FailureTransport, Detail: err.Error()}
}

// VaultAddresses returns every vault address published on the venue's stats
// endpoint. Malformed entries are skipped.
func (c *Client) VaultAddresses(ctx context.Context) ([]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.totalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.vaultsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault addresses: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vault address endpoint returned HTTP %d", resp.StatusCode)
	}

	var payload []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse vault addresses: %w", err)
	}

	addresses := make([]string, 0, len(payload))
	for _, item := range payload {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		summary, ok := entry["summary"].(map[string]interface{})
		if !ok {
			continue
		}
		if address, ok := summary["vaultAddress"].(string); ok {
			addresses = append(addresses, address)
		}
	}
	return addresses, nil
}

// Leaders extracts the leader address from each detail document. The result
// is positional: index i holds the leader for details[i], or the empty string
// when the fetch failed or the document carries no leader.
func Leaders(details []Outcome) []string {
	leaders := make([]string, len(details))
	for i, outcome := range details {
		if !outcome.OK() || outcome.Doc == nil {
			continue
		}
		leaders[i] = outcome.Doc.Str("leader")
	}
	return leaders
}
