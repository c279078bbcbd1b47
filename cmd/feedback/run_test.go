package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useDryRun(t *testing.T) {
	t.Helper()
	orig := runFlags
	runFlags.dryRun = true
	runFlags.watchConfig = false
	t.Cleanup(func() { runFlags = orig })
}

func TestRunDryRun_Valid(t *testing.T) {
	useTestConfig(t)
	useDryRun(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cmd, buf := testCommand("run")
	require.NoError(t, runServer(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration valid")
	assert.Contains(t, buf.String(), "Analysis provider: openai")
}

func TestRunDryRun_UnresolvedSecretFails(t *testing.T) {
	useTestConfig(t)
	useDryRun(t)
	t.Setenv("FEEDBACK_SECRETS_DIR", "")
	t.Setenv("OPENAI_API_KEY", "${secret:openai-api-key}")
	t.Setenv("FEEDBACK_SECRET_OPENAI_API_KEY", "")

	cmd, buf := testCommand("run")
	err := runServer(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers.openai.api_key")
	assert.NotContains(t, buf.String(), "Configuration valid")
}

func TestRunDryRun_MissingProviderKeyFails(t *testing.T) {
	useTestConfig(t)
	useDryRun(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FEEDBACK_PROVIDERS_OPENAI_API_KEY", "")

	cmd, buf := testCommand("run")
	err := runServer(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis provider")
	assert.NotContains(t, buf.String(), "Configuration valid")
}
