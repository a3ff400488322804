package sysboost

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpuppm/sysboost/ppm"
)

func TestRecompute_MergesTightestBoundsAcrossUsers(t *testing.T) {
	p, _ := newTestPolicy(t)
	// cluster 1: cores [1, 3] from WIFI, [2, 4] from USB -> floor 2, ceiling 3
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 1, 1, 3))
	require.NoError(t, p.SetClusterCoreLimit(UserUSB, 1, 2, 4))
	// cluster 1 freq: WIFI [1365000, 2010000] -> idx [4, 1], USB floor 1858000 -> idx 2
	// floor takes the smaller index (2), ceiling the larger (1)
	require.NoError(t, p.SetClusterFreqLimit(UserWiFi, 1, 1365000, 2010000))
	require.NoError(t, p.SetClusterFreqLimit(UserUSB, 1, 1858000, -1))

	final := p.FinalLimit()
	assert.Equal(t, cl(-1, -1, -1, -1), final.Clusters[0])
	assert.Equal(t, cl(2, 1, 2, 3), final.Clusters[1])
	assert.True(t, final.CoreLimited)
	assert.True(t, final.FreqLimited)
}

func TestRecompute_ConflictingCoresNarrowFloorToCeiling(t *testing.T) {
	// GIVEN one user caps cluster 0 at 2 while another demands at least 4
	p, _ := newTestPolicy(t)
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 0, -1, 2))
	require.NoError(t, p.SetClusterCoreLimit(UserPerfServ, 0, 4, -1))

	// THEN the final floor drops to the ceiling instead of failing
	assert.Equal(t, cl(-1, -1, 2, 2), p.FinalLimit().Clusters[0])
	// AND the individual rows keep what was asked
	assert.Equal(t, ppm.At(4), p.Users()[UserPerfServ].Limits[0].MinCore)
}

func TestRecompute_ConflictingFreqNarrowFloorToCeiling(t *testing.T) {
	p, _ := newTestPolicy(t)
	// ceiling 949000 -> idx 4; another user's floor 1416000 -> idx 1
	require.NoError(t, p.SetClusterFreqLimit(UserWiFi, 0, -1, 949000))
	require.NoError(t, p.SetFreq(UserPerfServ, 1416000))

	assert.Equal(t, cl(4, 4, -1, -1), p.FinalLimit().Clusters[0])
}

func TestRecompute_FlagsAndActivation(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(p *Policy) error
		wantCore bool
		wantFreq bool
	}{
		{"nothing set", func(p *Policy) error { return nil }, false, false},
		{"core floor only", func(p *Policy) error { return p.SetCore(UserUSB, 1) }, true, false},
		{"core ceiling only", func(p *Policy) error { return p.SetClusterCoreLimit(UserUSB, 1, -1, 0) }, true, false},
		{"freq floor only", func(p *Policy) error { return p.SetFreq(UserUSB, 689000) }, false, true},
		{"freq ceiling on last cluster", func(p *Policy) error { return p.SetClusterFreqLimit(UserUSB, 1, -1, 988000) }, false, true},
		{"both", func(p *Policy) error {
			if err := p.SetCore(UserUT, 8); err != nil {
				return err
			}
			return p.SetFreq(UserUT, 949000)
		}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPolicy(t)
			require.NoError(t, tt.setup(p))

			final := p.FinalLimit()
			assert.Equal(t, tt.wantCore, final.CoreLimited)
			assert.Equal(t, tt.wantFreq, final.FreqLimited)
			assert.Equal(t, tt.wantCore || tt.wantFreq, p.Activated())
		})
	}
}

func TestRecompute_IsIdempotent(t *testing.T) {
	p, _ := newTestPolicy(t)
	require.NoError(t, p.SetCore(UserWiFi, 5))
	require.NoError(t, p.SetClusterFreqLimit(UserUSB, 1, 988000, 1858000))

	p.mu.Lock()
	p.recompute()
	first := p.final.Clone()
	p.recompute()
	second := p.final.Clone()
	p.mu.Unlock()

	assert.Equal(t, first, second)
	assert.Equal(t, first, p.FinalLimit())
}

// referenceLimit folds user rows the slow, obvious way.
func referenceLimit(users []UserState, clusters int) ppm.UserLimit {
	out := ppm.NewUserLimit(clusters)
	for i := 0; i < clusters; i++ {
		minCore, maxCore, minIdx, maxIdx := -1, -1, -1, -1
		for _, u := range users {
			l := u.Limits[i].Raw()
			minCore = max(minCore, l.MinCore)
			if l.MaxCore != -1 && (maxCore == -1 || l.MaxCore < maxCore) {
				maxCore = l.MaxCore
			}
			if l.MinFreqIdx != -1 && (minIdx == -1 || l.MinFreqIdx < minIdx) {
				minIdx = l.MinFreqIdx
			}
			maxIdx = max(maxIdx, l.MaxFreqIdx)
		}
		if minIdx != -1 && minIdx < maxIdx {
			minIdx = maxIdx
		}
		if maxCore != -1 && minCore > maxCore {
			minCore = maxCore
		}
		out.Clusters[i] = cl(minIdx, maxIdx, minCore, maxCore)
	}
	out.RefreshFlags()
	return out
}

func TestRecompute_MatchesReferenceOverRandomSequences(t *testing.T) {
	topo := newTestTopology(t)
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		p, _ := newTestPolicy(t)
		for step := 0; step < 200; step++ {
			user := User(rng.Intn(int(NumUsers)))
			cluster := rng.Intn(topo.NumClusters())
			pick := func(lo, hi int) int {
				if rng.Intn(3) == 0 {
					return -1
				}
				return lo + rng.Intn(hi-lo+1)
			}
			switch rng.Intn(4) {
			case 0:
				_ = p.SetCore(user, rng.Intn(topo.NumPossibleCPUs()+1))
			case 1:
				_ = p.SetFreq(user, []int{0, -1, topo.Freq(cluster, rng.Intn(topo.NumFreqs(cluster)))}[rng.Intn(3)])
			case 2:
				_ = p.SetClusterCoreLimit(user, cluster,
					pick(topo.MinCore(cluster), topo.MaxCore(cluster)), pick(topo.MinCore(cluster), topo.MaxCore(cluster)))
			default:
				_ = p.SetClusterFreqLimit(user, cluster,
					pick(topo.MinFreq(cluster), topo.MaxFreq(cluster)), pick(topo.MinFreq(cluster), topo.MaxFreq(cluster)))
			}

			final := p.FinalLimit()
			require.NoError(t, final.CheckInvariants(), "seed %d step %d", seed, step)
			require.Equal(t, referenceLimit(p.Users(), topo.NumClusters()), final, "seed %d step %d", seed, step)
			require.Equal(t, final.Limited(), p.Activated())
		}
	}
}

func TestDumpFinalLimit_Format(t *testing.T) {
	p, _ := newTestPolicy(t)
	require.NoError(t, p.SetClusterCoreLimit(UserWiFi, 0, -1, 4))
	require.NoError(t, p.SetCore(UserPerfServ, 6))
	require.NoError(t, p.SetFreq(UserUT, 1286000))

	var buf bytes.Buffer
	require.NoError(t, p.DumpFinalLimit(&buf))

	want := "is_core_limited = 1, is_freq_limited = 1\n" +
		"cluster 0 = (2)(-1)(4)(4)\n" +
		"cluster 1 = (4)(-1)(2)(-1)\n"
	assert.Equal(t, want, buf.String())
}

func TestDumpFinalLimit_LogMatchesWriter(t *testing.T) {
	// GIVEN a policy logging at debug level into a capture hook
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p, _ := newTestPolicy(t, WithLogger(logrus.NewEntry(logger)))

	// WHEN a request triggers an aggregation pass
	hook.Reset()
	require.NoError(t, p.SetClusterCoreLimit(UserUSB, 1, 1, 2))

	// THEN the debug lines equal the writer dump
	var debugLines []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel {
			debugLines = append(debugLines, e.Message)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, p.DumpFinalLimit(&buf))
	assert.Equal(t, strings.TrimSuffix(buf.String(), "\n"), strings.Join(debugLines, "\n"))
}
