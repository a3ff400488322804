// Package ppm holds the shared types and contracts of the CPU power/performance
// management (PPM) framework: per-cluster limits, power states, the cluster
// topology, and the callback contracts between the framework and its policies.
//
// # Reading Guide
//
//   - bound.go: Bound, an optional integer bound (unset means "no constraint")
//   - limit.go: ClusterLimit and UserLimit, the shape every user-limit policy produces
//   - request.go: PolicyRequest, the concrete limits a policy hands to the framework
//   - topology.go: Topology and the config-backed StaticTopology
//   - contract.go: the Framework and Policy interfaces
//
// # Architecture
//
// Implementations live in sub-packages:
//   - ppm/sysboost/: the system boost policy (multi-user limit aggregation)
//   - ppm/framework/: an in-process PPM main that registers policies and re-decides
//   - ppm/procfs/: the text control files of the sysboost policy
//   - ppm/trace/: request trace recording
//
// Frequencies are handled as indexes into a per-cluster table sorted from the
// highest frequency (index 0) to the lowest. A smaller index is a higher frequency.
package ppm
