package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMux_ControlFilesAndDecision(t *testing.T) {
	sys := newTestSystem(t, false)
	srv := httptest.NewServer(newServeMux(sys))
	defer srv.Close()

	// WHEN a control file is written over HTTP
	resp, err := http.Post(srv.URL+"/ppm/policy/sysboost_core", "text/plain", strings.NewReader("1 2"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN the decision endpoint reflects it
	resp, err = http.Get(srv.URL + "/ppm/decision")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "seq: 1\n")
	assert.Contains(t, string(body), "state: NONE\n")
	assert.Contains(t, string(body), "- SYS_BOOST\n")
}

func TestServeMux_DecisionIsReadOnly(t *testing.T) {
	sys := newTestSystem(t, false)
	srv := httptest.NewServer(newServeMux(sys))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/ppm/decision", "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
