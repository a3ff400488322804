package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// scriptOp is one control-file write from an apply script.
type scriptOp struct {
	Line    int
	Entry   string // full control file name, e.g. sysboost_core
	Payload string // passed to the control file untouched
}

// entryAliases maps the short names accepted in scripts to control files.
var entryAliases = map[string]string{
	"core":               "sysboost_core",
	"freq":               "sysboost_freq",
	"cluster_core_limit": "sysboost_cluster_core_limit",
	"cluster_freq_limit": "sysboost_cluster_freq_limit",
}

// resolveEntry accepts a short alias or a full control file name.
func resolveEntry(name string) (string, error) {
	if full, ok := entryAliases[name]; ok {
		return full, nil
	}
	for _, full := range entryAliases {
		if full == name {
			return full, nil
		}
	}
	return "", fmt.Errorf("unknown control file %q", name)
}

// parseScript reads one "<entry> <payload>" per line. Blank lines and lines
// starting with # are skipped. The payload is not validated here; malformed
// payloads are the control file's business.
func parseScript(r io.Reader) ([]scriptOp, error) {
	var ops []scriptOp
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, payload, _ := strings.Cut(text, " ")
		entry, err := resolveEntry(name)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, scriptOp{Line: line, Entry: entry, Payload: strings.TrimSpace(payload)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return ops, nil
}
