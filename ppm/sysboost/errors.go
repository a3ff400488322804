package sysboost

import "errors"

var (
	// ErrInvalidUser is returned for a user outside the known set.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidCluster is returned for a cluster index outside the topology.
	ErrInvalidCluster = errors.New("invalid cluster")
	// ErrInvalidValue is returned for a core count, frequency or bound outside
	// the physical range.
	ErrInvalidValue = errors.New("invalid value")
	// ErrPolicyDisabled is returned for every request while the policy is disabled.
	ErrPolicyDisabled = errors.New("sysboost policy is not enabled")
)

var sentinels = []error{ErrInvalidUser, ErrInvalidCluster, ErrInvalidValue, ErrPolicyDisabled}

// reason returns the sentinel text behind err, for trace grouping.
func reason(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}
