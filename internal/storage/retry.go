package storage

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// withRetry runs op with exponential backoff. Context errors are not retried.
func withRetry(ctx context.Context, cfg RetryConfig, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		eb.InitialInterval = cfg.InitialInterval
	}

	b := backoff.WithContext(backoff.WithMaxRetries(eb, cfg.MaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}
