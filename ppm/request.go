package ppm

// ClusterRequest is a concrete per-cluster limit, every field set.
type ClusterRequest struct {
	MinCore    int `yaml:"min_core"`
	MaxCore    int `yaml:"max_core"`
	MinFreqIdx int `yaml:"min_freq_idx"`
	MaxFreqIdx int `yaml:"max_freq_idx"`
}

// PolicyRequest is the working limit a policy hands to the framework.
type PolicyRequest struct {
	Clusters []ClusterRequest
}

// NewPolicyRequest returns a zeroed request for n clusters.
func NewPolicyRequest(n int) PolicyRequest {
	return PolicyRequest{Clusters: make([]ClusterRequest, n)}
}

// Clone returns a deep copy.
func (r PolicyRequest) Clone() PolicyRequest {
	return PolicyRequest{Clusters: append([]ClusterRequest(nil), r.Clusters...)}
}

// Override replaces each field of r with the matching bound of l where that
// bound is set. Unset bounds keep r's value.
func (r *PolicyRequest) Override(l []ClusterLimit) {
	for i := range r.Clusters {
		if i >= len(l) {
			return
		}
		c := &r.Clusters[i]
		c.MinCore = l[i].MinCore.Or(c.MinCore)
		c.MaxCore = l[i].MaxCore.Or(c.MaxCore)
		c.MinFreqIdx = l[i].MinFreqIdx.Or(c.MinFreqIdx)
		c.MaxFreqIdx = l[i].MaxFreqIdx.Or(c.MaxFreqIdx)
	}
}

// Correct applies the same narrowing as ClusterLimit.Correct to every cluster.
func (r *PolicyRequest) Correct() {
	for i := range r.Clusters {
		c := &r.Clusters[i]
		if c.MaxCore < c.MinCore {
			c.MinCore = c.MaxCore
		}
		if c.MaxFreqIdx > c.MinFreqIdx {
			c.MinFreqIdx = c.MaxFreqIdx
		}
	}
}
