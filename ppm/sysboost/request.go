package sysboost

import (
	"fmt"

	"github.com/cpuppm/sysboost/ppm"
	"github.com/cpuppm/sysboost/ppm/trace"
)

// SetCore asks for at least coreNum online cores on behalf of user. The
// cores are handed out greedily in cluster order, each cluster taking as many
// as the current final ceiling (or its physical maximum) allows. Zero clears
// the user's core floors.
func (p *Policy) SetCore(user User, coreNum int) (err error) {
	defer p.record(user, trace.OpCore, -1, &err, coreNum)

	if !user.Valid() {
		p.log.Warnf("@SetCore: Invalid input: user = %d, core_num = %d", user, coreNum)
		return fmt.Errorf("%w: %d", ErrInvalidUser, user)
	}
	if coreNum < 0 || coreNum > p.topo.NumPossibleCPUs() {
		p.log.Warnf("@SetCore: Invalid input: user = %d, core_num = %d", user, coreNum)
		return fmt.Errorf("%w: core_num %d outside [0, %d]", ErrInvalidValue, coreNum, p.topo.NumPossibleCPUs())
	}

	return p.update("SetCore", func() {
		p.log.Infof("sys boost by %s: req_core = %d", user, coreNum)

		d := &p.users[user]
		d.coreReq = coreNum

		if coreNum == 0 {
			for i := range d.limits {
				d.limits[i].MinCore = ppm.Unbounded
			}
			return
		}

		remaining := coreNum
		for i := range d.limits {
			if remaining <= 0 {
				d.limits[i].MinCore = ppm.Unbounded
				continue
			}
			ceiling := p.final.Clusters[i].MaxCore.Or(p.topo.MaxCore(i))
			take := min(remaining, ceiling)
			d.limits[i].MinCore = ppm.At(take)
			remaining -= take
		}
	})
}

// SetFreq asks for a frequency floor of khz on every cluster. Zero clears the
// user's frequency floors; -1 leaves them explicitly unset.
func (p *Policy) SetFreq(user User, khz int) (err error) {
	defer p.record(user, trace.OpFreq, -1, &err, khz)

	if !user.Valid() {
		p.log.Warnf("@SetFreq: Invalid input: user = %d, freq = %d", user, khz)
		return fmt.Errorf("%w: %d", ErrInvalidUser, user)
	}
	if khz < -1 {
		p.log.Warnf("@SetFreq: Invalid input: user = %d, freq = %d", user, khz)
		return fmt.Errorf("%w: freq %d", ErrInvalidValue, khz)
	}

	return p.update("SetFreq", func() {
		p.log.Infof("sys boost by %s: req_freq = %d", user, khz)

		d := &p.users[user]
		d.freqReq = khz

		if khz == 0 {
			for i := range d.limits {
				d.limits[i].MinFreqIdx = ppm.Unbounded
			}
			return
		}

		for i := range d.limits {
			idx := ppm.Unbounded
			if khz != -1 {
				idx = ppm.At(p.topo.FreqToIndex(i, khz, ppm.RelationLow))
			}
			d.limits[i].MinFreqIdx = idx
			// the floor may not rise above this user's own ceiling
			d.limits[i].CorrectFreq()
		}
	})
}

// SetClusterCoreLimit sets user's core range on one cluster. -1 unsets a bound.
func (p *Policy) SetClusterCoreLimit(user User, cluster, minCore, maxCore int) (err error) {
	defer p.record(user, trace.OpClusterCoreLimit, cluster, &err, minCore, maxCore)

	if cluster < 0 || cluster >= p.topo.NumClusters() {
		p.log.Warnf("@SetClusterCoreLimit: Invalid input: cluster = %d", cluster)
		return fmt.Errorf("%w: %d", ErrInvalidCluster, cluster)
	}
	if !user.Valid() {
		p.log.Warnf("@SetClusterCoreLimit: Invalid input: user = %d, cluster = %d, max_core = %d, min_core = %d",
			user, cluster, maxCore, minCore)
		return fmt.Errorf("%w: %d", ErrInvalidUser, user)
	}
	lo, hi := p.topo.MinCore(cluster), p.topo.MaxCore(cluster)
	if !rawInRange(minCore, lo, hi) || !rawInRange(maxCore, lo, hi) {
		p.log.Warnf("@SetClusterCoreLimit: Invalid input: user = %d, cluster = %d, max_core = %d, min_core = %d",
			user, cluster, maxCore, minCore)
		return fmt.Errorf("%w: cluster %d core range (%d, %d) outside [%d, %d]",
			ErrInvalidValue, cluster, minCore, maxCore, lo, hi)
	}

	p.log.Infof("sys boost by %s: cluster %d min/max core = %d/%d", user, cluster, minCore, maxCore)

	limit := ppm.ClusterLimit{MinCore: ppm.BoundFromRaw(minCore), MaxCore: ppm.BoundFromRaw(maxCore)}
	limit.CorrectCore()

	return p.update("SetClusterCoreLimit", func() {
		d := &p.users[user]
		d.limits[cluster].MinCore = limit.MinCore
		d.limits[cluster].MaxCore = limit.MaxCore
	})
}

// SetClusterFreqLimit sets user's frequency range on one cluster, in kHz.
// -1 unsets a bound. The floor rounds up to a table entry and the ceiling
// rounds down.
func (p *Policy) SetClusterFreqLimit(user User, cluster, minKHz, maxKHz int) (err error) {
	defer p.record(user, trace.OpClusterFreqLimit, cluster, &err, minKHz, maxKHz)

	if cluster < 0 || cluster >= p.topo.NumClusters() {
		p.log.Warnf("@SetClusterFreqLimit: Invalid input: cluster = %d", cluster)
		return fmt.Errorf("%w: %d", ErrInvalidCluster, cluster)
	}
	if !user.Valid() {
		p.log.Warnf("@SetClusterFreqLimit: Invalid input: user = %d, cluster = %d, max_freq = %d, min_freq = %d",
			user, cluster, maxKHz, minKHz)
		return fmt.Errorf("%w: %d", ErrInvalidUser, user)
	}
	lo, hi := p.topo.MinFreq(cluster), p.topo.MaxFreq(cluster)
	if !rawInRange(minKHz, lo, hi) || !rawInRange(maxKHz, lo, hi) {
		p.log.Warnf("@SetClusterFreqLimit: Invalid input: user = %d, cluster = %d, max_freq = %d, min_freq = %d",
			user, cluster, maxKHz, minKHz)
		return fmt.Errorf("%w: cluster %d freq range (%d, %d) outside [%d, %d]",
			ErrInvalidValue, cluster, minKHz, maxKHz, lo, hi)
	}

	p.log.Infof("sys boost by %s: cluster %d min/max freq = %d/%d", user, cluster, minKHz, maxKHz)

	if maxKHz != -1 && minKHz > maxKHz {
		minKHz = maxKHz
	}
	var limit ppm.ClusterLimit
	if minKHz != -1 {
		limit.MinFreqIdx = ppm.At(p.topo.FreqToIndex(cluster, minKHz, ppm.RelationLow))
	}
	if maxKHz != -1 {
		limit.MaxFreqIdx = ppm.At(p.topo.FreqToIndex(cluster, maxKHz, ppm.RelationHigh))
	}
	limit.CorrectFreq()

	return p.update("SetClusterFreqLimit", func() {
		d := &p.users[user]
		d.limits[cluster].MinFreqIdx = limit.MinFreqIdx
		d.limits[cluster].MaxFreqIdx = limit.MaxFreqIdx
	})
}

// update runs mutate and the aggregation pass under the policy lock, then
// triggers a framework decision outside it.
func (p *Policy) update(fn string, mutate func()) error {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		p.log.Warnf("@%s: sysboost policy is not enabled!", fn)
		return ErrPolicyDisabled
	}
	mutate()
	p.recompute()
	p.mu.Unlock()

	p.fw.Trigger()
	return nil
}

func (p *Policy) record(user User, op trace.Op, cluster int, err *error, args ...int) {
	if p.trace == nil {
		return
	}
	p.trace.Record(trace.RequestRecord{
		User:     int(user),
		UserName: user.String(),
		Op:       op,
		Cluster:  cluster,
		Args:     args,
		Accepted: *err == nil,
		Reason:   reason(*err),
	})
}

// rawInRange accepts -1 (unset) or a value inside [lo, hi].
func rawInRange(v, lo, hi int) bool {
	return v == -1 || (v >= lo && v <= hi)
}
