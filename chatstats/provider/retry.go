package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// Backoff schedules for the two retryable failure classes. The last attempt never waits.
var (
	rateLimitWaits   = []time.Duration{20 * time.Second, 45 * time.Second, 90 * time.Second}
	serverErrorWaits = []time.Duration{2 * time.Second, 10 * time.Second, 30 * time.Second}
)

const maxAttempts = 3

// CallWithRetry sends params, retrying rate limit and server errors with a fixed backoff.
// Waiting stops early when ctx is done.
func CallWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	if ctx == nil {
		return nil, errors.New("CallWithRetry: ctx is nil")
	}
	if client == nil {
		return nil, errors.New("CallWithRetry: client is nil")
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		wait, retry := retryDelay(err, attempt)
		if !retry {
			return nil, err
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("CallWithRetry: gave up after %d attempts: %w", maxAttempts, lastErr)
}

func retryDelay(err error, attempt int) (time.Duration, bool) {
	if attempt >= maxAttempts-1 {
		return 0, false
	}
	switch {
	case isRateLimitError(err):
		return rateLimitWaits[attempt], true
	case isServerError(err):
		return serverErrorWaits[attempt], true
	default:
		return 0, false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
