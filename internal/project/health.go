package project

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WaitForHealth polls the application health endpoint until it answers
// HTTP 200, making exactly `attempts` tries with `delay` between them.
// sleep is injectable so tests do not wait.
func WaitForHealth(
	ctx context.Context,
	client *http.Client,
	url string,
	attempts int,
	delay time.Duration,
	sleep func(time.Duration),
	logf func(format string, args ...interface{}),
) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = probeHealth(ctx, client, url)
		if lastErr == nil {
			return nil
		}
		logf("health check failed (attempt %d/%d): %v", attempt, attempts, lastErr)

		if attempt < attempts {
			sleep(delay)
		}
	}
	return fmt.Errorf("%s did not become healthy after %d attempts: %w", url, attempts, lastErr)
}

func probeHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
