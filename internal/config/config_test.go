package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"ENV_FILE", "PORT", "DEBUG", "RUN_MODE", "MAX_BODY_BYTES", "LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL",
	"LLM_TIMEOUT", "GEMINI_API_KEY", "OPENAI_API_KEY", "API_KEY_PARAM", "KNOWLEDGE_FILE",
	"KNOWLEDGE_TABLE", "SHOP_NAME", "SHOP_URL", "SHOP_LOCATION",
}

// clearEnv blanks every managed variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Port)
	require.True(t, cfg.Debug)
	require.Equal(t, RunModeHTTP, cfg.RunMode)
	require.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	require.Equal(t, ProviderGemini, cfg.LLMProvider)
	require.Equal(t, 60*time.Second, cfg.LLMTimeout)
	require.Equal(t, "data.json", cfg.KnowledgeFile)
	require.Equal(t, "Pamith Tech Solutions", cfg.ShopName)
	require.Equal(t, "www.pamithtech.com", cfg.ShopURL)
	require.Equal(t, "Baddegama", cfg.ShopLocation)
	require.Empty(t, cfg.APIKey())
	require.False(t, cfg.NeedsAWS())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "false")
	t.Setenv("RUN_MODE", "Lambda")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("MAX_BODY_BYTES", "0")
	t.Setenv("OPENAI_API_KEY", " sk-env ")
	t.Setenv("KNOWLEDGE_TABLE", "shop-knowledge")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.False(t, cfg.Debug)
	require.Equal(t, RunModeLambda, cfg.RunMode)
	require.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	require.Equal(t, 15*time.Second, cfg.LLMTimeout)
	require.Zero(t, cfg.MaxBodyBytes)
	require.Equal(t, "sk-env", cfg.APIKey())
	require.Equal(t, "OPENAI_API_KEY", cfg.APIKeyEnv())
	require.True(t, cfg.NeedsAWS())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=AIza-file\nPORT=7000\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "7100")
	t.Cleanup(func() { _ = os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "AIza-file", cfg.APIKey())
	require.Equal(t, "GEMINI_API_KEY", cfg.APIKeyEnv())
	require.Equal(t, "7100", cfg.Port, "process environment must win over the env file")
}

func TestLoad_MissingExplicitEnvFileIsNotFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := Load()
	require.NoError(t, err)
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "provider", key: "LLM_PROVIDER", val: "llama"},
		{name: "run mode", key: "RUN_MODE", val: "grpc"},
		{name: "timeout", key: "LLM_TIMEOUT", val: "soon"},
		{name: "debug", key: "DEBUG", val: "maybe"},
		{name: "negative body cap", key: "MAX_BODY_BYTES", val: "-1"},
		{name: "non-numeric body cap", key: "MAX_BODY_BYTES", val: "10MB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
