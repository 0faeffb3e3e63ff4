package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL",
		"RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY_MS", "INTER_CALL_DELAY_MS",
		"REDIS_HOST", "SUPABASE_URL", "SUPABASE_SERVICE_KEY", "PORT", "GEMINI_BACKEND", "TRUST_PROXY",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiModel)
	assert.Equal(t, "gemini", cfg.GeminiBackend)
	assert.Equal(t, "us-central1", cfg.VertexLocation)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 2*time.Second, cfg.InterCallDelay)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.ArchiveEnabled())
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	require.NoError(t, cfg.validate())
	assert.Error(t, cfg.RequireGemini())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("RETRY_BASE_DELAY_MS", "10")
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_USE_TLS", "true")

	cfg := FromEnv()

	assert.Equal(t, "legacy-key", cfg.GeminiAPIKey)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.RedisUseTLS)
	assert.Equal(t, "cache.internal:6379", cfg.GetRedisAddr())
	assert.NoError(t, cfg.RequireGemini())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{GeminiBackend: "gemini", RetryMaxAttempts: 5, MaxUploadMB: 5, WebPQuality: 90}
	}

	cfg := base()
	cfg.RetryMaxAttempts = 0
	assert.Error(t, cfg.validate())

	cfg = base()
	cfg.RetryMaxAttempts = 1000
	assert.Error(t, cfg.validate(), "attempts are bounded")

	cfg.RetryMaxAttempts = 10
	assert.NoError(t, cfg.validate())

	cfg = base()
	cfg.SupabaseURL = "https://example.supabase.co"
	assert.Error(t, cfg.validate(), "url without key")

	cfg.SupabaseServiceKey = "service"
	assert.NoError(t, cfg.validate())
	assert.True(t, cfg.ArchiveEnabled())

	cfg = base()
	cfg.WebPQuality = 120
	assert.Error(t, cfg.validate())

	cfg = base()
	cfg.GeminiBackend = "openai"
	assert.Error(t, cfg.validate())
}

func TestRequireGeminiVertex(t *testing.T) {
	cfg := &Config{GeminiBackend: "vertex"}
	assert.Error(t, cfg.RequireGemini())

	cfg.VertexProject = "floral-prod"
	assert.NoError(t, cfg.RequireGemini(), "vertex does not need an api key")
}
