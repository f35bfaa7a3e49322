package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
endpoints:
  - name: work
    socket_path: /tmp/authsock-work.sock
    upstream_path: /tmp/ssh-agent.sock
    rules:
      - "comment:*@work.example.com"
log:
  level: info
  format: json
metrics:
  enabled: false
  addr: "127.0.0.1:9090"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Endpoints, 1)
	assert.Equal(t, "work", cfg.Endpoints[0].Name)
	assert.Equal(t, "/tmp/authsock-work.sock", cfg.Endpoints[0].SocketPath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	t.Setenv("AUTHSOCK_LOG_LEVEL", "debug")
	t.Setenv("AUTHSOCK_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_NoEndpoints(t *testing.T) {
	path := writeTempConfig(t, "endpoints: []\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingUpstreamPath(t *testing.T) {
	path := writeTempConfig(t, `
endpoints:
  - name: broken
    socket_path: /tmp/broken.sock
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEndpointConfig_RuleSet(t *testing.T) {
	ep := EndpointConfig{Name: "work", Rules: []string{"comment:*@work*"}}
	rs, err := ep.RuleSet()
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestEndpointConfig_RuleSet_InvalidRule(t *testing.T) {
	ep := EndpointConfig{Name: "broken", Rules: []string{"nonsense-garbage"}}
	_, err := ep.RuleSet()
	assert.Error(t, err)
}
