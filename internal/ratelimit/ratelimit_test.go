package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeWithinCapacityIsImmediate(t *testing.T) {
	bucket := NewPerMinute(10, 600)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, bucket.Consume(context.Background(), 1))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestConsumeBeyondCapacityThrottles(t *testing.T) {
	// capacity 5, refill 3000/min = 50 tokens/s. Draining two buckets' worth
	// must wait for at least one bucket refill: 5/50s = 100ms.
	bucket := NewPerMinute(5, 3000)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, bucket.Consume(context.Background(), 1))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestConsumeHonorsContextCancellation(t *testing.T) {
	bucket := NewPerMinute(1, 1)

	require.NoError(t, bucket.Consume(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := bucket.Consume(ctx, 1)
	assert.Error(t, err)
}
