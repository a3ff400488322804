package sysboost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpuppm/sysboost/ppm"
)

func TestPowerState_UnchangedWithoutCoreLimit(t *testing.T) {
	p, fw := newTestPolicy(t)
	fw.judgeState = ppm.PowerStateLittleOnly
	require.NoError(t, p.SetFreq(UserWiFi, 949000))

	got := p.PowerState(ppm.PowerStateNone)

	assert.Equal(t, ppm.PowerStateNone, got, "frequency bounds alone never move the state")
	assert.Equal(t, 0, fw.judgeCalls)
}

func TestPowerState_DefersToFrameworkWhenCoreLimited(t *testing.T) {
	p, fw := newTestPolicy(t)
	fw.judgeState = ppm.PowerStateLittleOnly
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 1, -1, 0))

	got := p.PowerState(ppm.PowerStateNone)

	assert.Equal(t, ppm.PowerStateLittleOnly, got)
	assert.Equal(t, 1, fw.judgeCalls)
}

func TestUpdateLimit_NothingToContributeWhenUnlimited(t *testing.T) {
	p, fw := newTestPolicy(t)

	_, ok := p.UpdateLimit(ppm.PowerStateNone)

	assert.False(t, ok)
	assert.Equal(t, 0, fw.checkCalls)
}

func TestUpdateLimit_OverridesOnlySetBounds(t *testing.T) {
	// GIVEN cluster 0 floored at 3 cores and cluster 1 capped at 1858000 kHz (idx 2)
	p, fw := newTestPolicy(t)
	require.NoError(t, p.SetCore(UserPerfServ, 3))
	require.NoError(t, p.SetClusterFreqLimit(UserUSB, 1, -1, 1858000))

	// WHEN the framework pulls the limit
	req, ok := p.UpdateLimit(ppm.PowerStateNone)

	// THEN unset bounds keep the framework defaults
	require.True(t, ok)
	assert.Equal(t, []ppm.ClusterRequest{
		{MinCore: 3, MaxCore: 4, MinFreqIdx: 7, MaxFreqIdx: 0},
		{MinCore: 0, MaxCore: 4, MinFreqIdx: 7, MaxFreqIdx: 2},
	}, req.Clusters)
	assert.Equal(t, 1, fw.checkCalls)
	assert.Equal(t, req, p.Request())
}

func TestUpdateLimit_CorrectsAfterFrameworkCheck(t *testing.T) {
	// GIVEN a framework check that lowers cluster 0's ceiling under the user floor
	p, fw := newTestPolicy(t)
	fw.check = func(req *ppm.PolicyRequest) {
		req.Clusters[0].MaxCore = 1
		req.Clusters[1].MaxFreqIdx = 5
	}
	require.NoError(t, p.SetCore(UserWiFi, 4))
	require.NoError(t, p.SetFreq(UserWiFi, 2010000))

	req, ok := p.UpdateLimit(ppm.PowerStateNone)

	// THEN the merged request is narrowed again
	require.True(t, ok)
	assert.Equal(t, 1, req.Clusters[0].MinCore)
	assert.Equal(t, 1, req.Clusters[0].MaxCore)
	assert.Equal(t, 5, req.Clusters[1].MinFreqIdx)
	assert.Equal(t, 5, req.Clusters[1].MaxFreqIdx)
}

func TestUpdateLimit_UsesLimitJudgedByPowerState(t *testing.T) {
	// GIVEN a decision that judged the state on a big-cluster cap
	p, fw := newTestPolicy(t)
	fw.judgeState = ppm.PowerStateLittleOnly
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 1, -1, 0))
	state := p.PowerState(ppm.PowerStateNone)
	require.Equal(t, ppm.PowerStateLittleOnly, state)

	// WHEN the cap is cleared before the same decision pulls the limit
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 1, -1, -1))
	req, ok := p.UpdateLimit(state)

	// THEN the limit matches the judged state
	require.True(t, ok)
	assert.Equal(t, 0, req.Clusters[1].MaxCore)

	// AND a later decision sees the cleared limit
	_, ok = p.UpdateLimit(ppm.PowerStateNone)
	assert.False(t, ok)
}
