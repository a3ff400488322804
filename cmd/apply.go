package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cpuppm/sysboost/ppm"
	"github.com/cpuppm/sysboost/ppm/framework"
	"github.com/cpuppm/sysboost/ppm/sysboost"
	"github.com/cpuppm/sysboost/ppm/trace"
)

var (
	applyScript  string   // Script file with one control write per line ("-" = stdin)
	applyWrites  []string // Extra control writes given on the command line
	applyShow    []string // Control files to print after the script
	applyDisable bool     // Disable the policy before running the script
	applyFormat  string   // Output format: text or yaml
	applyTrace   bool     // Record and summarize every request
)

// applySnapshot is the yaml output of apply.
type applySnapshot struct {
	Activated   bool                 `yaml:"activated"`
	CoreLimited bool                 `yaml:"is_core_limited"`
	FreqLimited bool                 `yaml:"is_freq_limited"`
	FinalLimit  []ppm.ClusterRequest `yaml:"final_limit"`
	Decision    framework.Decision   `yaml:"decision"`
	Trace       *trace.TraceSummary  `yaml:"trace,omitempty"`
}

// applyCmd runs control writes against a fresh policy and prints the result
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply control-file writes to a sysboost policy and print the resulting limits",
	Run: func(cmd *cobra.Command, args []string) {
		ops, err := collectOps(applyScript, applyWrites)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg, err := loadTopologyConfig(topologyPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		sys, err := newSystem(cfg, applyTrace)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer sys.close()

		if err := runApply(cmd.OutOrStdout(), sys, ops, applyShow, applyFormat, applyDisable); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func collectOps(scriptPath string, writes []string) ([]scriptOp, error) {
	var ops []scriptOp
	if scriptPath != "" {
		var r io.Reader = os.Stdin
		if scriptPath != "-" {
			f, err := os.Open(scriptPath)
			if err != nil {
				return nil, fmt.Errorf("opening script: %w", err)
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		parsed, err := parseScript(r)
		if err != nil {
			return nil, err
		}
		ops = append(ops, parsed...)
	}
	if len(writes) > 0 {
		parsed, err := parseScript(strings.NewReader(strings.Join(writes, "\n")))
		if err != nil {
			return nil, fmt.Errorf("--write: %w", err)
		}
		ops = append(ops, parsed...)
	}
	return ops, nil
}

func runApply(out io.Writer, sys *system, ops []scriptOp, show []string, format string, disable bool) error {
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unknown output format %q; valid formats: [text, yaml]", format)
	}
	if disable {
		if err := sys.fw.SetPolicyEnabled(sysboost.PolicyName, false); err != nil {
			return err
		}
	}

	for _, op := range ops {
		entry, ok := lookupEntry(sys, op.Entry)
		if !ok {
			return fmt.Errorf("line %d: unknown control file %q", op.Line, op.Entry)
		}
		logrus.Debugf("line %d: %s <- %q", op.Line, op.Entry, op.Payload)
		if _, err := entry.Write([]byte(op.Payload)); err != nil {
			return fmt.Errorf("line %d: %w", op.Line, err)
		}
	}

	if format == "yaml" {
		return writeApplyYAML(out, sys)
	}
	return writeApplyText(out, sys, show)
}

func writeApplyText(out io.Writer, sys *system, show []string) error {
	for _, name := range show {
		full, err := resolveEntry(name)
		if err != nil {
			return err
		}
		entry, _ := lookupEntry(sys, full)
		if _, err := fmt.Fprintf(out, "== %s\n", full); err != nil {
			return err
		}
		if err := entry.Show(out); err != nil {
			return err
		}
	}

	var sb strings.Builder
	d := sys.fw.LastDecision()
	fmt.Fprintf(&sb, "== decision %d\n", d.Seq)
	fmt.Fprintf(&sb, "state = %s, policies = [%s]\n", d.State, strings.Join(d.Policies, ", "))
	for i, l := range d.Limits {
		fmt.Fprintf(&sb, "cluster %d (%s) = core [%d, %d], freq_idx [%d, %d]\n",
			i, sys.topo.ClusterName(i), l.MinCore, l.MaxCore, l.MaxFreqIdx, l.MinFreqIdx)
	}

	if sys.trace != nil {
		s := trace.Summarize(sys.trace)
		sb.WriteString("== trace\n")
		fmt.Fprintf(&sb, "total = %d, accepted = %d, rejected = %d\n", s.Total, s.Accepted, s.Rejected)
		reasons := make([]string, 0, len(s.Reasons))
		for r := range s.Reasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&sb, "rejected (%s) = %d\n", r, s.Reasons[r])
		}
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func writeApplyYAML(out io.Writer, sys *system) error {
	limit := sys.policy.FinalLimit()
	snap := applySnapshot{
		Activated:   sys.policy.Activated(),
		CoreLimited: limit.CoreLimited,
		FreqLimited: limit.FreqLimited,
		Decision:    sys.fw.LastDecision(),
	}
	for _, l := range limit.Clusters {
		snap.FinalLimit = append(snap.FinalLimit, l.Raw())
	}
	if sys.trace != nil {
		snap.Trace = trace.Summarize(sys.trace)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}

func init() {
	applyCmd.Flags().StringVar(&applyScript, "script", "", "Script file with one \"<entry> <ints...>\" write per line (\"-\" for stdin)")
	applyCmd.Flags().StringArrayVar(&applyWrites, "write", nil, "Control write, e.g. --write \"core 1 4\" (repeatable)")
	applyCmd.Flags().StringSliceVar(&applyShow, "show", []string{"cluster_core_limit", "cluster_freq_limit"}, "Control files to print after the writes")
	applyCmd.Flags().BoolVar(&applyDisable, "disable", false, "Disable the policy before applying writes")
	applyCmd.Flags().StringVar(&applyFormat, "format", "text", "Output format (text, yaml)")
	applyCmd.Flags().BoolVar(&applyTrace, "trace", false, "Record every request and print a summary")
}
