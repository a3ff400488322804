package cmd

import (
	"fmt"

	"github.com/cpuppm/sysboost/ppm"
	"github.com/cpuppm/sysboost/ppm/framework"
	"github.com/cpuppm/sysboost/ppm/procfs"
	"github.com/cpuppm/sysboost/ppm/sysboost"
	"github.com/cpuppm/sysboost/ppm/trace"
)

// system wires one topology, framework, sysboost policy and its control files.
type system struct {
	topo    *ppm.StaticTopology
	fw      *framework.Main
	policy  *sysboost.Policy
	entries []*procfs.Entry
	trace   *trace.Recorder // nil unless tracing is on
}

// loadTopologyConfig reads path, or returns the built-in layout for "".
func loadTopologyConfig(path string) (*ppm.TopologyConfig, error) {
	if path == "" {
		return ppm.DefaultTopologyConfig(), nil
	}
	return ppm.LoadTopologyConfig(path)
}

func newSystem(cfg *ppm.TopologyConfig, forceTrace bool) (*system, error) {
	topo, err := ppm.NewStaticTopology(cfg)
	if err != nil {
		return nil, err
	}
	fw := framework.New(topo)
	if cfg.Policy.Mode != "" {
		mode, err := ppm.ParseMode(cfg.Policy.Mode)
		if err != nil {
			return nil, err
		}
		fw.SetMode(mode)
	}

	var opts []sysboost.Option
	var rec *trace.Recorder
	if cfg.Policy.Trace || forceTrace {
		rec = trace.NewRecorder()
		opts = append(opts, sysboost.WithTrace(rec))
	}
	if !cfg.PolicyEnabled() {
		opts = append(opts, sysboost.WithDisabled())
	}
	policy, err := sysboost.New(topo, fw, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sysboost policy: %w", err)
	}
	return &system{
		topo:    topo,
		fw:      fw,
		policy:  policy,
		entries: procfs.Entries(policy),
		trace:   rec,
	}, nil
}

func (s *system) close() {
	s.policy.Close()
}

func lookupEntry(s *system, name string) (*procfs.Entry, bool) {
	return procfs.Lookup(s.entries, name)
}
