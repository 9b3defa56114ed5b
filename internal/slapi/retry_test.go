package slapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/softlayer/softlayer-go/sl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	err := policy.Do(context.Background(), "test", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	err := policy.Do(context.Background(), "test", func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyRecoversMidway(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond}

	err := policy.Do(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryForeverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := RetryPolicy{MaxAttempts: 0, Delay: time.Millisecond}

	err := policy.Do(ctx, "test", func() error {
		calls++
		if calls == 4 {
			cancel()
		}
		return errors.New("still failing")
	})

	assert.Error(t, err)
	assert.GreaterOrEqual(t, calls, 4)
}

func TestFaultClassification(t *testing.T) {
	apiErr := sl.Error{
		Exception: "SoftLayer_Exception_WebService_RateLimitExceeded",
		Message:   "Too many requests",
	}

	code, msg := Fault(apiErr)
	assert.Equal(t, "SoftLayer_Exception_WebService_RateLimitExceeded", code)
	assert.Equal(t, "Too many requests", msg)

	code, msg = Fault(errors.New("dial tcp: timeout"))
	assert.Empty(t, code)
	assert.Equal(t, "dial tcp: timeout", msg)
}

func TestPacerEnforcesInterval(t *testing.T) {
	pacer := NewPacer(20 * time.Millisecond)

	start := time.Now()
	pacer.Wait()
	pacer.Wait()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestPacerDisabled(t *testing.T) {
	pacer := NewPacer(0)

	start := time.Now()
	pacer.Wait()
	pacer.Wait()

	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestNilPacerIsSafe(t *testing.T) {
	var pacer *Pacer
	assert.NotPanics(t, pacer.Wait)
}
