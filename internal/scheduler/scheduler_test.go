package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTarget struct {
	calls    atomic.Int32
	deadline atomic.Bool
	err      error
}

func (c *countingTarget) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		c.deadline.Store(true)
	}
	return c.err
}

func TestTickCallsTargetWithDeadline(t *testing.T) {
	target := &countingTarget{err: errors.New("upstream down")}
	r := New(target, time.Minute, time.Second)

	r.Tick()
	assert.Equal(t, int32(1), target.calls.Load())
	assert.True(t, target.deadline.Load())
}

func TestStartDisabled(t *testing.T) {
	target := &countingTarget{}
	r := New(target, 0, 0)

	require.NoError(t, r.Start())
	r.Stop()
	assert.Equal(t, int32(0), target.calls.Load())
}

func TestStartRefreshesPeriodically(t *testing.T) {
	target := &countingTarget{}
	r := New(target, time.Second, time.Second)

	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return target.calls.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}
