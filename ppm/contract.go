package ppm

// Framework is the part of the PPM main a policy calls into.
//
// JudgeStateByUserLimit, DefaultLimitByState and CheckUserLimit are invoked
// from inside policy callbacks while Trigger is running, so implementations
// must not take the lock that Trigger holds.
type Framework interface {
	Register(p Policy) error
	Unregister(p Policy)
	// Trigger re-runs the global decision with the current policy limits.
	Trigger()

	JudgeStateByUserLimit(cur PowerState, limit UserLimit) PowerState
	DefaultLimitByState(state PowerState, req *PolicyRequest)
	CheckUserLimit(state PowerState, req *PolicyRequest, limit UserLimit)
}

// Policy is the callback contract every policy registers with the framework.
type Policy interface {
	Name() string
	Priority() Priority

	Enabled() bool
	SetEnabled(enable bool)
	// Activated reports whether the policy currently constrains anything.
	Activated() bool

	// PowerState may move the framework to a different state; returning cur
	// leaves it unchanged.
	PowerState(cur PowerState) PowerState
	// UpdateLimit returns the policy's limits for state. ok is false when the
	// policy has nothing to contribute.
	UpdateLimit(state PowerState) (req PolicyRequest, ok bool)

	StatusChanged(enable bool)
	ModeChanged(mode Mode)
}
