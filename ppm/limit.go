package ppm

import (
	"fmt"
	"io"
)

// ClusterLimit is one set of core-count and frequency-index bounds for a cluster.
type ClusterLimit struct {
	MinCore    Bound
	MaxCore    Bound
	MinFreqIdx Bound // frequency floor, as the largest allowed index
	MaxFreqIdx Bound // frequency ceiling, as the smallest allowed index
}

// Correct narrows infeasible bounds instead of rejecting them: a core floor
// above the core ceiling drops to the ceiling, and a frequency floor index
// below the ceiling index (a floor above the ceiling) moves to the ceiling.
func (l *ClusterLimit) Correct() {
	l.CorrectCore()
	l.CorrectFreq()
}

// CorrectCore applies the core half of Correct.
func (l *ClusterLimit) CorrectCore() {
	if maxCore, ok := l.MaxCore.Get(); ok {
		if minCore, ok := l.MinCore.Get(); ok && minCore > maxCore {
			l.MinCore = At(maxCore)
		}
	}
}

// CorrectFreq applies the frequency half of Correct.
func (l *ClusterLimit) CorrectFreq() {
	if minIdx, ok := l.MinFreqIdx.Get(); ok {
		if maxIdx, ok := l.MaxFreqIdx.Get(); ok && minIdx < maxIdx {
			l.MinFreqIdx = At(maxIdx)
		}
	}
}

// CoreLimited reports whether either core bound is set.
func (l ClusterLimit) CoreLimited() bool {
	return l.MinCore.IsSet() || l.MaxCore.IsSet()
}

// FreqLimited reports whether either frequency bound is set.
func (l ClusterLimit) FreqLimited() bool {
	return l.MinFreqIdx.IsSet() || l.MaxFreqIdx.IsSet()
}

// UnsetClusterLimits returns n cluster limits with every bound unset.
func UnsetClusterLimits(n int) []ClusterLimit {
	return make([]ClusterLimit, n)
}

// UserLimit is the aggregated limit a user-limit policy exposes to the framework.
type UserLimit struct {
	Clusters    []ClusterLimit
	FreqLimited bool
	CoreLimited bool
}

// NewUserLimit returns an unlimited UserLimit for n clusters.
func NewUserLimit(n int) UserLimit {
	return UserLimit{Clusters: UnsetClusterLimits(n)}
}

// Clone returns a deep copy.
func (u UserLimit) Clone() UserLimit {
	out := u
	out.Clusters = append([]ClusterLimit(nil), u.Clusters...)
	return out
}

// RefreshFlags recomputes FreqLimited and CoreLimited from the cluster bounds.
func (u *UserLimit) RefreshFlags() {
	u.FreqLimited = false
	u.CoreLimited = false
	for _, l := range u.Clusters {
		if !u.FreqLimited && l.FreqLimited() {
			u.FreqLimited = true
		}
		if !u.CoreLimited && l.CoreLimited() {
			u.CoreLimited = true
		}
		if u.FreqLimited && u.CoreLimited {
			break
		}
	}
}

// Limited reports whether any bound is set.
func (u UserLimit) Limited() bool {
	return u.FreqLimited || u.CoreLimited
}

// WriteTo renders the limit in the diagnostic dump format, one line for the
// flags followed by one line per cluster.
func (u UserLimit) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "is_core_limited = %d, is_freq_limited = %d\n",
		boolToInt(u.CoreLimited), boolToInt(u.FreqLimited))
	total += int64(n)
	if err != nil {
		return total, err
	}
	for i, l := range u.Clusters {
		n, err = fmt.Fprintf(w, "cluster %d = (%d)(%d)(%d)(%d)\n", i,
			l.MinFreqIdx.Raw(), l.MaxFreqIdx.Raw(), l.MinCore.Raw(), l.MaxCore.Raw())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CheckInvariants reports the first infeasible cluster range or stale flag.
func (u UserLimit) CheckInvariants() error {
	freq, core := false, false
	for i, l := range u.Clusters {
		minCore, minOK := l.MinCore.Get()
		maxCore, maxOK := l.MaxCore.Get()
		if minOK && maxOK && minCore > maxCore {
			return fmt.Errorf("cluster %d: min_core %d above max_core %d", i, minCore, maxCore)
		}
		minIdx, minOK := l.MinFreqIdx.Get()
		maxIdx, maxOK := l.MaxFreqIdx.Get()
		if minOK && maxOK && minIdx < maxIdx {
			return fmt.Errorf("cluster %d: min_freq_idx %d below max_freq_idx %d", i, minIdx, maxIdx)
		}
		freq = freq || l.FreqLimited()
		core = core || l.CoreLimited()
	}
	if freq != u.FreqLimited {
		return fmt.Errorf("is_freq_limited = %t, clusters say %t", u.FreqLimited, freq)
	}
	if core != u.CoreLimited {
		return fmt.Errorf("is_core_limited = %t, clusters say %t", u.CoreLimited, core)
	}
	return nil
}

// Raw converts the limit to plain integers, -1 for unset bounds.
func (l ClusterLimit) Raw() ClusterRequest {
	return ClusterRequest{
		MinCore:    l.MinCore.Raw(),
		MaxCore:    l.MaxCore.Raw(),
		MinFreqIdx: l.MinFreqIdx.Raw(),
		MaxFreqIdx: l.MaxFreqIdx.Raw(),
	}
}
