package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	text  string
	err   error
	block bool
	calls int
}

func (s *scriptedProvider) Complete(ctx context.Context, req Request) (Response, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Text: s.text}, nil
}

func TestFallbackClient_PrimaryServes(t *testing.T) {
	primary := &scriptedProvider{text: "from primary"}
	standby := &scriptedProvider{text: "from standby"}
	c := NewFallbackClient(primary, standby, nil)

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "from primary", resp.Text)
	require.Zero(t, standby.calls)
}

func TestFallbackClient_StandbyOnPrimaryError(t *testing.T) {
	primary := &scriptedProvider{err: errors.New("throttled")}
	standby := &scriptedProvider{text: "from standby"}
	c := NewFallbackClient(primary, standby, nil)

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "from standby", resp.Text)
	require.Equal(t, 1, primary.calls)
}

func TestFallbackClient_BlankPrimaryFallsThrough(t *testing.T) {
	primary := &scriptedProvider{text: "   \n"}
	standby := &scriptedProvider{text: "from standby"}
	c := NewFallbackClient(primary, standby, nil)

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "from standby", resp.Text)
}

func TestFallbackClient_AllProvidersFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	standbyErr := errors.New("standby down")
	c := NewFallbackClient(&scriptedProvider{err: primaryErr}, &scriptedProvider{err: standbyErr}, nil)

	_, err := c.Complete(context.Background(), Request{})
	require.ErrorIs(t, err, standbyErr)
}

func TestFallbackClient_NoStandby(t *testing.T) {
	primaryErr := errors.New("primary down")
	c := NewFallbackClient(&scriptedProvider{err: primaryErr}, nil, nil)

	_, err := c.Complete(context.Background(), Request{})
	require.ErrorIs(t, err, primaryErr)
}

func TestFallbackClient_AttemptTimeoutFreesStandby(t *testing.T) {
	primary := &scriptedProvider{block: true}
	standby := &scriptedProvider{text: "from standby"}
	c := NewFallbackClient(primary, standby, nil).WithAttemptTimeout(20 * time.Millisecond)

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "from standby", resp.Text)
}

func TestFallbackClient_CallerCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &scriptedProvider{block: true}
	standby := &scriptedProvider{text: "from standby"}
	c := NewFallbackClient(primary, standby, nil)

	_, err := c.Complete(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, standby.calls)
}
