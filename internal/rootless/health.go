package rootless

import (
	"context"
	"fmt"
	"time"

	"github.com/davidmanzanoai/install-new/internal/doctor"
)

// WaitForDaemon polls the daemon until a ping succeeds, making exactly
// `attempts` tries with `delay` between them. connect is called fresh each
// attempt because the socket may not exist until the daemon is up. sleep is
// injectable so tests do not wait.
func WaitForDaemon(
	ctx context.Context,
	connect func() (doctor.Pinger, error),
	attempts int,
	delay time.Duration,
	sleep func(time.Duration),
	logf func(format string, args ...interface{}),
) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pinger, err := connect()
		if err == nil {
			if err = pinger.Ping(ctx); err == nil {
				return nil
			}
		}
		lastErr = err
		logf("daemon not ready (attempt %d/%d): %v", attempt, attempts, err)

		if attempt < attempts {
			sleep(delay)
		}
	}
	return fmt.Errorf("docker daemon did not become ready after %d attempts: %w", attempts, lastErr)
}
