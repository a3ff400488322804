package sysboost

import (
	"bufio"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cpuppm/sysboost/ppm"
)

// recompute rebuilds the final limit from every user row.
// Callers must hold p.mu.
func (p *Policy) recompute() {
	for i := range p.final.Clusters {
		var merged ppm.ClusterLimit
		for u := range p.users {
			l := p.users[u].limits[i]
			merged.MinCore = ppm.MaxBound(merged.MinCore, l.MinCore)
			merged.MaxCore = ppm.MinBound(merged.MaxCore, l.MaxCore)
			merged.MinFreqIdx = ppm.MinBound(merged.MinFreqIdx, l.MinFreqIdx)
			merged.MaxFreqIdx = ppm.MaxBound(merged.MaxFreqIdx, l.MaxFreqIdx)
		}
		merged.Correct()
		p.final.Clusters[i] = merged
	}

	p.final.RefreshFlags()
	p.activated = p.final.Limited()

	p.logFinalLimit()
}

// logFinalLimit writes the final limit dump to the debug log.
// Callers must hold p.mu.
func (p *Policy) logFinalLimit() {
	if !p.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	var sb strings.Builder
	_, _ = p.final.WriteTo(&sb)
	sc := bufio.NewScanner(strings.NewReader(sb.String()))
	for sc.Scan() {
		p.log.Debug(sc.Text())
	}
}

// DumpFinalLimit writes the same content the debug log receives to w.
func (p *Policy) DumpFinalLimit(w io.Writer) error {
	limit := p.FinalLimit()
	_, err := limit.WriteTo(w)
	return err
}
