package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/azure2openai"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		EnvAccessToken:  "admin-secret",
		EnvResourceName: "myres",
		EnvAzureAPIKey:  "azure-key",
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(baseEnv()))
	require.NoError(t, err)

	require.Equal(t, "admin-secret", cfg.AccessToken)
	require.Equal(t, azure2openai.DefaultAPIVersion, cfg.APIVersion)
	require.Equal(t, azure2openai.DefaultEndpoint, cfg.Endpoint)
	require.Equal(t, "memory", cfg.StoreDriver)
	require.Equal(t, 20*time.Millisecond, cfg.StreamPace)
	require.Equal(t, DefaultListen, cfg.Listen)
	require.Empty(t, cfg.MetricsListen)
	require.Equal(t, "info", cfg.Log.Level)

	table := cfg.ModelTable()
	require.Equal(t, 2, table.Len())
	_, ok := table.Deployment(azure2openai.ModelGPT35)
	require.False(t, ok)
}

func TestFromLookup_MissingRequired(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvAccessToken)
	require.Contains(t, err.Error(), EnvAzureAPIKey)
	require.Contains(t, err.Error(), EnvResourceName)

	// 自定义 endpoint 不含 {resource} 时不需要资源名
	env := map[string]string{EnvAccessToken: "a", EnvAzureAPIKey: "k", EnvEndpoint: "http://localhost:9000"}
	_, err = FromLookup(lookupFrom(env))
	require.NoError(t, err)
}

func TestFromLookup_ModelSources(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
models:
  - name: gpt-4o
    deployment: 4o-prod
  - name: gpt-4
    deployment: gpt4-from-file
`), 0o600))

	env := baseEnv()
	env[EnvDeployGPT35] = "gpt35-prod"
	env[EnvModelMapper] = "gpt-4=gpt4-from-env"
	env[EnvModelMapFile] = file

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)

	table := cfg.ModelTable()
	names := make([]string, 0, table.Len())
	for _, m := range table.Models() {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{azure2openai.ModelGPT35, azure2openai.ModelEmbeddingAda, "gpt-4", "gpt-4o"}, names)

	dep, ok := table.Deployment("gpt-4")
	require.True(t, ok)
	require.Equal(t, "gpt4-from-file", dep)
	dep, ok = table.Deployment(azure2openai.ModelGPT35)
	require.True(t, ok)
	require.Equal(t, "gpt35-prod", dep)
}

func TestFromLookup_InvalidValues(t *testing.T) {
	env := baseEnv()
	env[EnvStreamPace] = "fast"
	_, err := FromLookup(lookupFrom(env))
	require.Error(t, err)

	env = baseEnv()
	env[EnvModelMapper] = "broken"
	_, err = FromLookup(lookupFrom(env))
	require.Error(t, err)

	env = baseEnv()
	env[EnvLogJSON] = "maybe"
	_, err = FromLookup(lookupFrom(env))
	require.Error(t, err)

	env = baseEnv()
	env[EnvModelMapFile] = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = FromLookup(lookupFrom(env))
	require.Error(t, err)
}

func TestFromLookup_Overrides(t *testing.T) {
	env := baseEnv()
	env[EnvStreamPace] = "0s"
	env[EnvStoreDriver] = "Redis"
	env[EnvStoreDSN] = "redis://localhost:6379/1"
	env[EnvLogJSON] = "true"
	env[EnvAPIVersion] = "2024-02-01"

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)
	require.Zero(t, cfg.StreamPace)
	require.Equal(t, "redis", cfg.StoreDriver)
	require.Equal(t, "redis://localhost:6379/1", cfg.StoreDSN)
	require.True(t, cfg.Log.JSON)
	require.Equal(t, "2024-02-01", cfg.APIVersion)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ACCESS_TOKEN=from-dotenv\nRESOURCE_NAME=res\nAZURE_OPENAI_API_KEY=key\n"), 0o600))
	t.Chdir(dir)
	// godotenv 不覆盖已存在的变量；先清空，t.Setenv 负责在结束时恢复
	for _, key := range []string{EnvAccessToken, EnvResourceName, EnvAzureAPIKey} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.AccessToken)
}

func TestLoadUpstream_AdminSecretOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvAccessToken, "")
	t.Setenv(EnvResourceName, "res")
	t.Setenv(EnvAzureAPIKey, "key")

	cfg, err := LoadUpstream()
	require.NoError(t, err)
	require.Empty(t, cfg.AccessToken)

	_, err = Load()
	require.Error(t, err)
}
