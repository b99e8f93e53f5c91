package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/common"
)

// TimeServiceClock returns a Clock that asks the time service at url for
// the current timestamp. The service answers GET with the bare timestamp
// in "02/01/2006 15:04:05" form.
func TimeServiceClock(url string, hc *http.Client) Clock {
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Second}
	}
	return func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("time service: %s", resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
		if err != nil {
			return "", err
		}
		ts := strings.TrimSpace(string(body))
		if _, err := time.Parse(common.TimestampLayout, ts); err != nil {
			return "", fmt.Errorf("time service: %w", err)
		}
		return ts, nil
	}
}

// WithTimeService makes the client stamp requests with the time service at
// url, falling back to the local clock when the service fails.
func WithTimeService(url string) Option {
	remote := TimeServiceClock(url, nil)
	return WithClock(func(ctx context.Context) (string, error) {
		if ts, err := remote(ctx); err == nil {
			return ts, nil
		}
		return LocalClock(ctx)
	})
}
