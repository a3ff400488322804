// Package trace records the requests a policy receives, accepted or not.
// This package has no dependencies on ppm/ or its policies; it stores pure data types.
package trace

// Op names the request entry point.
type Op string

const (
	OpCore             Op = "core"
	OpFreq             Op = "freq"
	OpClusterCoreLimit Op = "cluster_core_limit"
	OpClusterFreqLimit Op = "cluster_freq_limit"
)

// RequestRecord captures a single request and its outcome.
type RequestRecord struct {
	Seq      int
	User     int
	UserName string
	Op       Op
	Cluster  int   // -1 for requests spanning every cluster
	Args     []int // raw arguments as received
	Accepted bool
	Reason   string // empty when accepted
}
