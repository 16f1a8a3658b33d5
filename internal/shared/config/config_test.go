package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "OBJECT_STORE", "ANALYSIS_PROVIDER", "HEALTH_CHECK_TIMEOUT", "MAX_UPLOAD_BYTES", "ENV"} {
		t.Setenv(key, "")
	}

	cfg := source{}.build()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, "remote", cfg.AnalysisProvider)
	assert.Equal(t, 3*time.Second, cfg.HealthCheckTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 0, cfg.AnalysisMaxRetries)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OBJECT_STORE", "")

	cfg := source{file: map[string]string{"PORT": "7070", "OBJECT_STORE": "minio"}}.build()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "minio", cfg.ObjectStoreType)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("HEALTH_CHECK_TIMEOUT", "soon")
	t.Setenv("ANALYSIS_MAX_RETRIES", "many")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := source{}.build()

	assert.Equal(t, 3*time.Second, cfg.HealthCheckTimeout)
	assert.Equal(t, 0, cfg.AnalysisMaxRetries)
	assert.False(t, cfg.MinioUseSSL)
}

func TestDBPoolReadsNestedFileKeys(t *testing.T) {
	for _, key := range []string{"DB_MAX_OPEN_CONNS", "DB_CONNECT_ATTEMPTS", "DB_PING_TIMEOUT", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME"} {
		t.Setenv(key, "")
	}
	values, err := parseYAML([]byte("db:\n  max_open_conns: 4\n  connect_attempts: 2\n  ping_timeout: 2s\n"))
	require.NoError(t, err)

	cfg := source{file: values}.build()

	assert.Equal(t, DBPool{MaxOpenConns: 4, ConnectAttempts: 2, PingTimeout: 2 * time.Second}, cfg.DBPool)
}

func TestDurationAcceptsMilliseconds(t *testing.T) {
	t.Setenv("DEMO_DELAY", "250")

	cfg := source{}.build()

	assert.Equal(t, 250*time.Millisecond, cfg.DemoDelay)
}

func TestParseYAMLFlattensNestedKeys(t *testing.T) {
	values, err := parseYAML([]byte(`
port: 8081
analysis:
  provider: demo
  timeout: 45s
  max-retries: 2
cors_allow_origins:
  - http://a.test
  - http://b.test
minio:
  use_ssl: true
`))
	require.NoError(t, err)

	assert.Equal(t, "8081", values["PORT"])
	assert.Equal(t, "demo", values["ANALYSIS_PROVIDER"])
	assert.Equal(t, "45s", values["ANALYSIS_TIMEOUT"])
	assert.Equal(t, "2", values["ANALYSIS_MAX_RETRIES"])
	assert.Equal(t, "http://a.test,http://b.test", values["CORS_ALLOW_ORIGINS"])
	assert.Equal(t, "true", values["MINIO_USE_SSL"])
}

func TestParseYAMLRejectsMalformedInput(t *testing.T) {
	_, err := parseYAML([]byte("port: [unterminated"))
	assert.Error(t, err)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  provider: openai\nllm_model: gpt-test\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ANALYSIS_PROVIDER", "")
	t.Setenv("LLM_MODEL", "")

	cfg := Load()

	assert.Equal(t, "openai", cfg.AnalysisProvider)
	assert.Equal(t, "gpt-test", cfg.LLMModel)
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nLEGAL_TEST_KEEP=file\nLEGAL_TEST_NEW=\"fresh\"\n"), 0o600))
	t.Setenv("LEGAL_TEST_KEEP", "env")
	t.Setenv("LEGAL_TEST_NEW", "")
	os.Unsetenv("LEGAL_TEST_NEW")

	loadEnvFiles(path)
	t.Cleanup(func() { os.Unsetenv("LEGAL_TEST_NEW") })

	assert.Equal(t, "env", os.Getenv("LEGAL_TEST_KEEP"))
	assert.Equal(t, "fresh", os.Getenv("LEGAL_TEST_NEW"))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
	assert.Nil(t, splitAndTrim(""))
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line, key, val string
		ok             bool
	}{
		{line: "PORT=9090", key: "PORT", val: "9090", ok: true},
		{line: "export LOG_LEVEL=debug", key: "LOG_LEVEL", val: "debug", ok: true},
		{line: `OPENAI_BASE_URL="http://localhost:1234/v1"`, key: "OPENAI_BASE_URL", val: "http://localhost:1234/v1", ok: true},
		{line: "JWT_SECRET='a # b'", key: "JWT_SECRET", val: "a # b", ok: true},
		{line: "ENV=dev # local", key: "ENV", val: "dev", ok: true},
		{line: "# comment"},
		{line: "   "},
		{line: "NOVALUE"},
		{line: "=orphan"},
	}
	for _, tc := range cases {
		key, val, ok := parseEnvLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		if tc.ok {
			assert.Equal(t, tc.key, key, tc.line)
			assert.Equal(t, tc.val, val, tc.line)
		}
	}
}
