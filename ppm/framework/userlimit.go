package framework

import (
	"github.com/cpuppm/sysboost/ppm"
)

// These helpers only read the immutable topology; policies call them from
// inside Trigger, which already holds m.mu.

// JudgeStateByUserLimit moves to LITTLE_ONLY when every cluster but the first
// is capped at zero cores, and leaves LITTLE_ONLY when a user needs cores on
// another cluster.
func (m *Main) JudgeStateByUserLimit(cur ppm.PowerState, limit ppm.UserLimit) ppm.PowerState {
	if len(limit.Clusters) < 2 {
		return cur
	}
	allCapped, anyForced := true, false
	for _, l := range limit.Clusters[1:] {
		if maxCore, ok := l.MaxCore.Get(); !ok || maxCore != 0 {
			allCapped = false
		}
		if minCore, ok := l.MinCore.Get(); ok && minCore > 0 {
			anyForced = true
		}
	}
	switch {
	case allCapped:
		return ppm.PowerStateLittleOnly
	case anyForced && cur == ppm.PowerStateLittleOnly:
		return ppm.PowerStateNone
	default:
		return cur
	}
}

// DefaultLimitByState fills req with the full physical range, except that
// LITTLE_ONLY keeps every cluster but the first at zero cores.
func (m *Main) DefaultLimitByState(state ppm.PowerState, req *ppm.PolicyRequest) {
	n := m.topo.NumClusters()
	if len(req.Clusters) != n {
		req.Clusters = make([]ppm.ClusterRequest, n)
	}
	for i := range req.Clusters {
		c := &req.Clusters[i]
		c.MinCore = m.topo.MinCore(i)
		c.MaxCore = m.topo.MaxCore(i)
		c.MinFreqIdx = m.topo.NumFreqs(i) - 1
		c.MaxFreqIdx = 0
		if state == ppm.PowerStateLittleOnly && i > 0 {
			c.MinCore = 0
			c.MaxCore = 0
		}
	}
}

// CheckUserLimit reconciles a user-limit request with state: in LITTLE_ONLY a
// cluster with a user core floor gets its ceiling back, every field is clamped
// to the physical range, and at least one core stays allowed.
func (m *Main) CheckUserLimit(state ppm.PowerState, req *ppm.PolicyRequest, limit ppm.UserLimit) {
	total := 0
	for i := range req.Clusters {
		c := &req.Clusters[i]
		if state == ppm.PowerStateLittleOnly && i > 0 && i < len(limit.Clusters) {
			if minCore, ok := limit.Clusters[i].MinCore.Get(); ok && minCore > 0 {
				c.MaxCore = limit.Clusters[i].MaxCore.Or(m.topo.MaxCore(i))
			}
		}

		lastIdx := m.topo.NumFreqs(i) - 1
		c.MinCore = clamp(c.MinCore, m.topo.MinCore(i), m.topo.MaxCore(i))
		c.MaxCore = clamp(c.MaxCore, m.topo.MinCore(i), m.topo.MaxCore(i))
		c.MinFreqIdx = clamp(c.MinFreqIdx, 0, lastIdx)
		c.MaxFreqIdx = clamp(c.MaxFreqIdx, 0, lastIdx)
		total += c.MaxCore
	}
	if total == 0 && len(req.Clusters) > 0 {
		req.Clusters[0].MaxCore = max(1, m.topo.MinCore(0))
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
