package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_Valid(t *testing.T) {
	useTestConfig(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cmd, buf := testCommand("validate")
	require.NoError(t, validateConfig(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration valid")
	assert.NotContains(t, buf.String(), "will not start")
}

func TestConfigValidate_MissingProviderKeyWarns(t *testing.T) {
	useTestConfig(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FEEDBACK_PROVIDERS_OPENAI_API_KEY", "")

	cmd, buf := testCommand("validate")
	require.NoError(t, validateConfig(cmd, nil))
	assert.Contains(t, buf.String(), "providers.openai.api_key is not set")
}

func TestConfigValidate_SecretReferences(t *testing.T) {
	useTestConfig(t)
	t.Setenv("FEEDBACK_SECRETS_DIR", "")
	t.Setenv("OPENAI_API_KEY", "${secret:openai-api-key}")
	t.Setenv("FEEDBACK_SECRET_OPENAI_API_KEY", "")

	cmd, buf := testCommand("validate")
	require.NoError(t, validateConfig(cmd, nil))
	assert.Contains(t, buf.String(), "providers.openai.api_key")

	t.Setenv("FEEDBACK_SECRET_OPENAI_API_KEY", "sk-resolved-secret")
	cmd, buf = testCommand("validate")
	require.NoError(t, validateConfig(cmd, nil))
	assert.NotContains(t, buf.String(), "⚠️")
	assert.NotContains(t, buf.String(), "sk-resolved-secret")
}

func TestConfigValidate_Invalid(t *testing.T) {
	dir := useTestConfig(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: memcached\n"), 0600))
	cfgFile = path

	cmd, buf := testCommand("validate")
	require.Error(t, validateConfig(cmd, nil))
	assert.Contains(t, buf.String(), "cache.backend")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FEEDBACK_TEST_ENV_VALUE=from-file\n"), 0600))

	t.Setenv("FEEDBACK_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("FEEDBACK_TEST_ENV_VALUE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("FEEDBACK_TEST_ENV_VALUE"))

	assert.NoError(t, loadEnvFile(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/feedback", redactURL("postgres://app:secret@db:5432/feedback"))
	assert.Equal(t, "sqlite://./feedback.db", redactURL("sqlite://./feedback.db"))
}
