package trace

// UserSummary counts outcomes for one user.
type UserSummary struct {
	Accepted int `yaml:"accepted"`
	Rejected int `yaml:"rejected"`
}

// TraceSummary aggregates statistics from a Recorder.
type TraceSummary struct {
	Total    int                    `yaml:"total"`
	Accepted int                    `yaml:"accepted"`
	Rejected int                    `yaml:"rejected"`
	ByUser   map[string]UserSummary `yaml:"by_user"`
	Reasons  map[string]int         `yaml:"reasons"` // rejection reason -> count
}

// Summarize computes aggregate statistics.
// Safe for a nil or empty recorder (returns zero-value fields).
func Summarize(r *Recorder) *TraceSummary {
	summary := &TraceSummary{
		ByUser:  make(map[string]UserSummary),
		Reasons: make(map[string]int),
	}
	if r == nil {
		return summary
	}

	for _, rec := range r.Records() {
		summary.Total++
		us := summary.ByUser[rec.UserName]
		if rec.Accepted {
			summary.Accepted++
			us.Accepted++
		} else {
			summary.Rejected++
			us.Rejected++
			summary.Reasons[rec.Reason]++
		}
		summary.ByUser[rec.UserName] = us
	}
	return summary
}
