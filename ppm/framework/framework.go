// Package framework is an in-process PPM main: it keeps the registered
// policies in priority order, lets them move the power state, and merges their
// limits into one decision every time Trigger runs.
package framework

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cpuppm/sysboost/ppm"
)

// Decision is the outcome of one Trigger.
type Decision struct {
	Seq      int                  `yaml:"seq"`
	State    ppm.PowerState       `yaml:"state"`
	Limits   []ppm.ClusterRequest `yaml:"limits"`
	Policies []string             `yaml:"policies"` // policies that contributed, in priority order
}

// Main implements ppm.Framework.
type Main struct {
	mu       sync.Mutex
	topo     ppm.Topology
	policies []ppm.Policy // sorted by priority, stable on ties
	mode     ppm.Mode
	last     Decision
	triggers int
	log      *logrus.Entry
}

var _ ppm.Framework = (*Main)(nil)

// New creates a framework in performance mode with no policies.
func New(topo ppm.Topology) *Main {
	m := &Main{
		topo: topo,
		mode: ppm.ModePerformance,
		log:  logrus.WithField("component", "ppm_main"),
	}
	m.last = Decision{State: ppm.PowerStateNone, Limits: m.defaultLimits(ppm.PowerStateNone)}
	return m
}

// Register adds p and enables it.
func (m *Main) Register(p ppm.Policy) error {
	if p == nil {
		return fmt.Errorf("nil policy")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.policies {
		if q.Name() == p.Name() {
			return fmt.Errorf("policy %s already registered", p.Name())
		}
	}
	m.policies = append(m.policies, p)
	sort.SliceStable(m.policies, func(i, j int) bool {
		return m.policies[i].Priority() < m.policies[j].Priority()
	})
	p.SetEnabled(true)
	m.log.Debugf("policy %s registered (priority %#x)", p.Name(), int(p.Priority()))
	return nil
}

// Unregister removes p if present.
func (m *Main) Unregister(p ppm.Policy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.policies {
		if q == p {
			m.policies = append(m.policies[:i], m.policies[i+1:]...)
			m.log.Debugf("policy %s unregistered", p.Name())
			return
		}
	}
}

// Policies returns the registered policy names in priority order.
func (m *Main) Policies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.policies))
	for _, p := range m.policies {
		names = append(names, p.Name())
	}
	return names
}

// SetPolicyEnabled enables or disables a registered policy by name.
func (m *Main) SetPolicyEnabled(name string, enable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if p.Name() == name {
			p.SetEnabled(enable)
			p.StatusChanged(enable)
			return nil
		}
	}
	return fmt.Errorf("policy %s not registered", name)
}

// SetMode switches the operating mode and notifies every policy.
func (m *Main) SetMode(mode ppm.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	for _, p := range m.policies {
		p.ModeChanged(mode)
	}
}

// Mode returns the current operating mode.
func (m *Main) Mode() ppm.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Trigger re-decides the power state and the merged limits.
func (m *Main) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.baseState()
	active := make([]ppm.Policy, 0, len(m.policies))
	for _, p := range m.policies {
		if p.Enabled() && p.Activated() {
			active = append(active, p)
		}
	}
	for _, p := range active {
		state = p.PowerState(state)
	}

	merged := ppm.PolicyRequest{Clusters: m.defaultLimits(state)}
	contributors := make([]string, 0, len(active))
	for _, p := range active {
		req, ok := p.UpdateLimit(state)
		if !ok {
			continue
		}
		merge(&merged, req)
		contributors = append(contributors, p.Name())
	}

	m.triggers++
	m.last = Decision{
		Seq:      m.triggers,
		State:    state,
		Limits:   merged.Clusters,
		Policies: contributors,
	}
	m.log.Debugf("decision %d: state = %s, policies = %v, limits = %v",
		m.triggers, state, contributors, merged.Clusters)
}

// LastDecision returns a copy of the most recent decision.
func (m *Main) LastDecision() Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.last
	d.Limits = append([]ppm.ClusterRequest(nil), m.last.Limits...)
	d.Policies = append([]string(nil), m.last.Policies...)
	return d
}

// Triggers returns how many decisions have run.
func (m *Main) Triggers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggers
}

func (m *Main) baseState() ppm.PowerState {
	if m.mode == ppm.ModeLowPower {
		return ppm.PowerStateLittleOnly
	}
	return ppm.PowerStateNone
}

func (m *Main) defaultLimits(state ppm.PowerState) []ppm.ClusterRequest {
	req := ppm.NewPolicyRequest(m.topo.NumClusters())
	m.DefaultLimitByState(state, &req)
	return req.Clusters
}

// merge narrows dst by req: floors take the max, ceilings the min, and an
// infeasible result keeps the ceiling.
func merge(dst *ppm.PolicyRequest, req ppm.PolicyRequest) {
	for i := range dst.Clusters {
		if i >= len(req.Clusters) {
			break
		}
		d, r := &dst.Clusters[i], req.Clusters[i]
		d.MinCore = max(d.MinCore, r.MinCore)
		d.MaxCore = min(d.MaxCore, r.MaxCore)
		d.MinFreqIdx = min(d.MinFreqIdx, r.MinFreqIdx)
		d.MaxFreqIdx = max(d.MaxFreqIdx, r.MaxFreqIdx)
	}
	dst.Correct()
}
