package ppm

import (
	"fmt"
	"sort"
)

// Topology answers the per-cluster hardware queries policies need.
type Topology interface {
	NumClusters() int
	MinCore(cluster int) int
	MaxCore(cluster int) int
	MinFreq(cluster int) int
	MaxFreq(cluster int) int
	NumFreqs(cluster int) int
	// FreqToIndex maps a frequency in kHz to a table index using rel.
	FreqToIndex(cluster, khz int, rel Relation) int
	NumPossibleCPUs() int
}

type clusterInfo struct {
	name    string
	minCore int
	maxCore int
	freqs   []int // descending
}

// StaticTopology is a Topology backed by fixed frequency tables.
type StaticTopology struct {
	clusters []clusterInfo
	cpus     int
}

// NewStaticTopology builds a topology from a validated config. Frequency
// tables are sorted descending so index 0 is the highest frequency.
func NewStaticTopology(cfg *TopologyConfig) (*StaticTopology, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &StaticTopology{}
	for _, c := range cfg.Clusters {
		freqs := append([]int(nil), c.FreqsKHz...)
		sort.Sort(sort.Reverse(sort.IntSlice(freqs)))
		t.clusters = append(t.clusters, clusterInfo{
			name:    c.Name,
			minCore: c.MinCore,
			maxCore: c.MaxCore,
			freqs:   freqs,
		})
		t.cpus += c.MaxCore
	}
	return t, nil
}

func (t *StaticTopology) NumClusters() int         { return len(t.clusters) }
func (t *StaticTopology) MinCore(cluster int) int  { return t.clusters[cluster].minCore }
func (t *StaticTopology) MaxCore(cluster int) int  { return t.clusters[cluster].maxCore }
func (t *StaticTopology) NumFreqs(cluster int) int { return len(t.clusters[cluster].freqs) }
func (t *StaticTopology) NumPossibleCPUs() int     { return t.cpus }

func (t *StaticTopology) MinFreq(cluster int) int {
	f := t.clusters[cluster].freqs
	return f[len(f)-1]
}

func (t *StaticTopology) MaxFreq(cluster int) int {
	return t.clusters[cluster].freqs[0]
}

// ClusterName returns the configured name of a cluster, or "cluster<N>" when
// the config leaves it empty.
func (t *StaticTopology) ClusterName(cluster int) string {
	if name := t.clusters[cluster].name; name != "" {
		return name
	}
	return fmt.Sprintf("cluster%d", cluster)
}

// Freq returns the frequency at idx in kHz.
func (t *StaticTopology) Freq(cluster, idx int) int {
	return t.clusters[cluster].freqs[idx]
}

// FreqToIndex follows cpufreq table semantics. Targets outside the table
// clamp to its ends.
func (t *StaticTopology) FreqToIndex(cluster, khz int, rel Relation) int {
	freqs := t.clusters[cluster].freqs
	switch rel {
	case RelationLow:
		// Largest index whose frequency is still >= khz.
		for i := len(freqs) - 1; i >= 0; i-- {
			if freqs[i] >= khz {
				return i
			}
		}
		return 0
	case RelationHigh:
		// Smallest index whose frequency is <= khz.
		for i, f := range freqs {
			if f <= khz {
				return i
			}
		}
		return len(freqs) - 1
	default:
		panic(fmt.Sprintf("unknown frequency relation %d", rel))
	}
}
