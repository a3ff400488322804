package sysboost

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cpuppm/sysboost/ppm"
	"github.com/cpuppm/sysboost/ppm/trace"
)

// PolicyName is the name the policy registers under.
const PolicyName = "SYS_BOOST"

// Policy is the system boost policy. It is safe for concurrent use.
type Policy struct {
	// mu serializes the request API, the aggregation pass, and every read of
	// the final limit.
	mu sync.Mutex

	topo  ppm.Topology
	fw    ppm.Framework
	log   *logrus.Entry
	trace *trace.Recorder

	enabled   bool
	activated bool
	users     []userData
	final     ppm.UserLimit
	req       ppm.PolicyRequest // last request handed to the framework
	judged    *ppm.UserLimit    // limit PowerState judged, consumed by the next UpdateLimit
	disabled  bool              // from WithDisabled, applied after registration
}

// Option configures a Policy.
type Option func(*Policy)

// WithTrace records every request into r.
func WithTrace(r *trace.Recorder) Option {
	return func(p *Policy) { p.trace = r }
}

// WithLogger replaces the default logrus entry.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Policy) { p.log = log }
}

// WithDisabled starts the policy administratively disabled.
func WithDisabled() Option {
	return func(p *Policy) { p.disabled = true }
}

// New allocates the user registry and the final limit, then registers the
// policy with fw. A registration failure is returned and nothing stays registered.
func New(topo ppm.Topology, fw ppm.Framework, opts ...Option) (*Policy, error) {
	if topo == nil || topo.NumClusters() <= 0 {
		return nil, fmt.Errorf("sysboost: topology has no clusters")
	}
	if fw == nil {
		return nil, fmt.Errorf("sysboost: nil framework")
	}
	n := topo.NumClusters()
	p := &Policy{
		topo:    topo,
		fw:      fw,
		log:     logrus.WithField("policy", PolicyName),
		enabled: true,
		final:   ppm.NewUserLimit(n),
		users:   make([]userData, 0, NumUsers),
	}
	for u := User(0); u < NumUsers; u++ {
		p.users = append(p.users, newUserData(u, n))
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := fw.Register(p); err != nil {
		return nil, fmt.Errorf("sysboost policy register failed: %w", err)
	}
	if p.disabled {
		p.SetEnabled(false)
	}
	p.log.Infof("register %s done!", PolicyName)
	return p, nil
}

// Close unregisters the policy from the framework.
func (p *Policy) Close() {
	p.fw.Unregister(p)
}

func (p *Policy) Name() string           { return PolicyName }
func (p *Policy) Priority() ppm.Priority { return ppm.PriorityPerformanceBase }

// Enabled reports the administrative enable state.
func (p *Policy) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetEnabled is called by the framework. A disabled policy drops every request.
func (p *Policy) SetEnabled(enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enable
}

// Activated is true iff the final limit constrains cores or frequency.
func (p *Policy) Activated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activated
}

// FinalLimit returns a copy of the aggregated limit.
func (p *Policy) FinalLimit() ppm.UserLimit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.final.Clone()
}

// Users returns a copy of every registry row in registration order.
func (p *Policy) Users() []UserState {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]UserState, 0, len(p.users))
	for i := range p.users {
		out = append(out, p.users[i].snapshot())
	}
	return out
}

// Request returns the limits last produced by UpdateLimit.
func (p *Policy) Request() ppm.PolicyRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.req.Clone()
}

// Trace returns the recorder set with WithTrace, or nil.
func (p *Policy) Trace() *trace.Recorder {
	return p.trace
}

// StatusChanged is called by the framework after SetEnabled.
func (p *Policy) StatusChanged(enable bool) {
	p.log.Debugf("sysboost policy status changed to %t", enable)
}

// ModeChanged is called by the framework on a mode switch.
func (p *Policy) ModeChanged(mode ppm.Mode) {
	p.log.Debugf("ppm mode changed to %s", mode)
}
