package slapi

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/softlayer/softlayer-go/sl"
)

// RetryPolicy controls the blocking retry loop around invoice and detail
// lookups. The zero MaxAttempts value retries forever, matching the
// nightly batch's preference for eventual completion over bounded latency.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy retries forever with a 5 second pause after each
// failure.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 0, Delay: 5 * time.Second}

// Do runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. Failures are logged with their classified fault code and never
// surfaced to the operator except through the log.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultRetryPolicy.Delay
	}

	var bo backoff.BackOff = backoff.NewConstantBackOff(delay)
	if p.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1))
	}
	bo = backoff.WithContext(bo, ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil {
			code, msg := Fault(err)
			log.Error().
				Str("op", op).
				Int("attempt", attempt).
				Str("fault_code", code).
				Str("fault_string", msg).
				Msg("API call failed")
		}
		return err
	}, bo)
}

// Fault classifies an API error into its fault code and message. Errors
// that did not come from the API report an empty code.
func Fault(err error) (code, message string) {
	var apiErr sl.Error
	if errors.As(err, &apiErr) {
		return apiErr.Exception, apiErr.Message
	}
	return "", err.Error()
}
