package app

import (
	"context"
	"errors"

	"github.com/desertthunder/porter/internal/shared"
)

// Action is a retryable step.
type Action func(ctx context.Context) error

// RetryPolicy re-runs an action after a refresh step when the action fails with [shared.ErrUnauthorized].
//
// MaxAttempts bounds the number of refresh-and-retry rounds, not the total number of calls.
type RetryPolicy struct {
	MaxAttempts int
}

// DefaultRetryPolicy allows one refresh followed by one retry.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 1}

// Do runs action. While it returns [shared.ErrUnauthorized] and attempts remain, refresh runs first and
// the action is retried only if the refresh succeeds. A refresh error is returned as is.
func (p RetryPolicy) Do(ctx context.Context, action, refresh Action) error {
	err := action(ctx)
	for attempt := 0; attempt < p.MaxAttempts && errors.Is(err, shared.ErrUnauthorized); attempt++ {
		if rerr := refresh(ctx); rerr != nil {
			return rerr
		}
		err = action(ctx)
	}
	return err
}
