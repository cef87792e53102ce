package training

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/appforge/discovery-ai-platform/internal/profile"
)

func newTestCollector(t *testing.T, queueCap int) *Collector {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCollector(rc, "training:test", queueCap, nil)
}

func TestSubmitCorrection_RoundTrip(t *testing.T) {
	c := newTestCollector(t, 100)
	ctx := context.Background()

	err := c.SubmitCorrection(ctx, Correction{
		SessionID:      "sess-1",
		Field:          "industry",
		DetectedValue:  "saas",
		CorrectedValue: "fintech",
		SourceText:     "we process card payments",
	})
	require.NoError(t, err)

	n, err := c.PendingCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	drained, err := c.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drained, 1)
	require.Equal(t, "fintech", drained[0].CorrectedValue)
	require.Equal(t, profile.AnalysisVersion, drained[0].AnalysisVersion)
	require.False(t, drained[0].SubmittedAt.IsZero())

	n, err = c.PendingCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestSubmitCorrection_CapDropsOldest(t *testing.T) {
	c := newTestCollector(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := c.SubmitCorrection(ctx, Correction{
			SessionID:      "sess-1",
			Field:          "role",
			CorrectedValue: fmt.Sprintf("value-%d", i),
		})
		require.NoError(t, err)
	}

	drained, err := c.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drained, 3)
	require.Equal(t, "value-2", drained[0].CorrectedValue)
	require.Equal(t, "value-4", drained[2].CorrectedValue)
}

func TestDrain_EmptyQueue(t *testing.T) {
	c := newTestCollector(t, 10)

	drained, err := c.Drain(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, drained)
}
