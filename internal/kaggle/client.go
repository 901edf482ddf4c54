// Package kaggle downloads dataset archives from the Kaggle API.
package kaggle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrDownloadExhausted is returned when every download attempt has failed.
var ErrDownloadExhausted = errors.New("dataset download exhausted")

// Client issues authenticated dataset download requests.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client for the given API root and bearer key.
// A zero timeout leaves requests unbounded.
func NewClient(baseURL, key string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		key:     key,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchDataset downloads the named dataset archive and returns its raw bytes.
//
// A transport error or non-2xx response counts as a failed attempt.
// On sustained failure exactly attempts tries occur, separated by the fixed
// delay, before the terminal ErrDownloadExhausted. Context cancellation
// aborts the inter-attempt wait.
func (c *Client) FetchDataset(ctx context.Context, dataset string, attempts int, delay time.Duration) ([]byte, error) {
	if attempts < 1 {
		return nil, fmt.Errorf("attempts must be at least 1, got %d", attempts)
	}

	endpoint := fmt.Sprintf("%s/datasets/download/%s", c.baseURL, dataset)

	var payload []byte
	attempt := 0

	operation := func() error {
		attempt++
		data, err := c.fetchOnce(ctx, endpoint)
		if err != nil {
			c.logger.Error("dataset download attempt failed",
				"dataset", dataset, "attempt", attempt, "error", err)
			return err
		}
		c.logger.Info("dataset downloaded",
			"dataset", dataset, "attempt", attempt, "bytes", len(data))
		payload = data
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		c.logger.Info("retrying dataset download", "dataset", dataset, "wait", wait)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed after %d attempts: %v",
			ErrDownloadExhausted, dataset, attempt, err)
	}

	return payload, nil
}

// fetchOnce performs a single authenticated GET against the download endpoint.
func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused between attempts.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}
