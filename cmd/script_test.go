package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Suppress request logs during tests.
	// Set DEBUG_TESTS=1 to see full logs: DEBUG_TESTS=1 go test ./cmd/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestParseScript_SkipsCommentsAndResolvesAliases(t *testing.T) {
	script := `
# boost wifi
core 0 4

sysboost_freq 1 1416000
  cluster_core_limit   2 1 -1 0
cluster_freq_limit
`
	ops, err := parseScript(strings.NewReader(script))
	require.NoError(t, err)

	assert.Equal(t, []scriptOp{
		{Line: 3, Entry: "sysboost_core", Payload: "0 4"},
		{Line: 5, Entry: "sysboost_freq", Payload: "1 1416000"},
		{Line: 6, Entry: "sysboost_cluster_core_limit", Payload: "2 1 -1 0"},
		{Line: 7, Entry: "sysboost_cluster_freq_limit", Payload: ""},
	}, ops)
}

func TestParseScript_UnknownEntryReportsLine(t *testing.T) {
	_, err := parseScript(strings.NewReader("core 0 1\nvolt 0 900\n"))
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, `"volt"`)
}

func TestResolveEntry(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "core", want: "sysboost_core"},
		{in: "cluster_freq_limit", want: "sysboost_cluster_freq_limit"},
		{in: "sysboost_cluster_core_limit", want: "sysboost_cluster_core_limit"},
		{in: "sysboost", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolveEntry(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectOps_ScriptThenWrites(t *testing.T) {
	path := writeTempFile(t, "script.txt", "core 0 2\n")

	ops, err := collectOps(path, []string{"freq 1 949000", "cluster_core_limit 0 1 -1 0"})
	require.NoError(t, err)

	require.Len(t, ops, 3)
	assert.Equal(t, "sysboost_core", ops[0].Entry)
	assert.Equal(t, "sysboost_freq", ops[1].Entry)
	assert.Equal(t, 2, ops[2].Line, "write lines are numbered on their own")
}

func TestCollectOps_Errors(t *testing.T) {
	_, err := collectOps("/nonexistent/script.txt", nil)
	assert.ErrorContains(t, err, "opening script")

	_, err = collectOps("", []string{"bogus 1"})
	assert.ErrorContains(t, err, "--write")
}
