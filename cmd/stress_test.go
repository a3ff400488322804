package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStress_CountsEveryRequest(t *testing.T) {
	sys := newTestSystem(t, false)

	res, err := runStress(context.Background(), sys, 3, 100, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(300), res.Requests)
	assert.Equal(t, res.Requests, res.Accepted+res.Rejected)
	assert.Positive(t, res.Rejected, "out-of-range arguments are generated")
	// one decision per accepted request
	assert.Equal(t, int(res.Accepted), res.Triggers)
	assert.NoError(t, sys.policy.FinalLimit().CheckInvariants())
}

func TestRunStress_DisabledPolicyRejectsAll(t *testing.T) {
	sys := newTestSystem(t, false)
	require.NoError(t, sys.fw.SetPolicyEnabled("SYS_BOOST", false))

	res, err := runStress(context.Background(), sys, 2, 20, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Accepted)
	assert.Equal(t, 0, res.Triggers)
}

func TestRunStress_InvalidArguments(t *testing.T) {
	sys := newTestSystem(t, false)
	_, err := runStress(context.Background(), sys, 0, 10, 1)
	assert.Error(t, err)
}

func TestRunStress_CancelledContext(t *testing.T) {
	sys := newTestSystem(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runStress(ctx, sys, 2, 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
