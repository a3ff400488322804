package sysboost

import (
	"github.com/cpuppm/sysboost/ppm"
)

// PowerState defers to the framework's user-limit judgement when the final
// limit constrains cores. Frequency bounds alone never change the state.
// The judged limit is kept for the UpdateLimit call of the same decision.
func (p *Policy) PowerState(cur ppm.PowerState) ppm.PowerState {
	p.mu.Lock()
	limit := p.final.Clone()
	p.judged = &limit
	p.mu.Unlock()

	if limit.CoreLimited {
		return p.fw.JudgeStateByUserLimit(cur, limit)
	}
	return cur
}

// UpdateLimit starts from the framework defaults for state and overrides every
// bound the final limit sets. Unset bounds keep the default.
func (p *Policy) UpdateLimit(state ppm.PowerState) (ppm.PolicyRequest, bool) {
	p.log.Debugf("sysboost policy update limit for new state = %s", state)

	limit := p.decisionLimit()
	if !limit.Limited() {
		return ppm.PolicyRequest{}, false
	}

	req := ppm.NewPolicyRequest(len(limit.Clusters))
	p.fw.DefaultLimitByState(state, &req)
	req.Override(limit.Clusters)
	p.fw.CheckUserLimit(state, &req, limit)
	// the framework's adjustments may reintroduce an infeasible range
	req.Correct()

	p.mu.Lock()
	p.req = req.Clone()
	p.mu.Unlock()
	return req, true
}

// decisionLimit returns the limit PowerState judged for this decision, or a
// fresh snapshot when UpdateLimit runs on its own. Request calls may land
// between the two callbacks; the state and the limits still agree.
func (p *Policy) decisionLimit() ppm.UserLimit {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.judged != nil {
		limit := *p.judged
		p.judged = nil
		return limit
	}
	return p.final.Clone()
}
