package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"floral-studio-server/modules/common/logger"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	AppEnv string

	// Gemini API
	GeminiBackend string // gemini | vertex
	GeminiAPIKey  string
	GeminiModel   string

	// Vertex AI (GEMINI_BACKEND=vertex)
	VertexProject         string
	VertexLocation        string
	VertexCredentialsJSON string
	VertexCredentialsPath string

	// Retry / pacing
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	InterCallDelay   time.Duration

	// Server
	Port         string
	MaxUploadMB  int
	AllowOrigins string

	// IP 별 생성 요청 제한 (0 = 비활성)
	RateLimitPerMinute int
	RateLimitBurst     int
	// 리버스 프록시 뒤에서만 true (X-Forwarded-For 신뢰)
	TrustProxy bool

	// Redis (optional)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Guest usage (0 = unlimited)
	GuestDailyLimit int

	// Supabase archival (optional)
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string
	WebPQuality           float32
}

// maxRetryAttempts - gemini.MaxAttemptsLimit 와 같은 값
const maxRetryAttempts = 10

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		logger.L().Debug().Msg("⚠️  .env file not found, using environment variables")
	}

	cfg := FromEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg

	logger.L().Info().
		Str("backend", cfg.GeminiBackend).
		Str("model", cfg.GeminiModel).
		Int("retry_attempts", cfg.RetryMaxAttempts).
		Dur("retry_base", cfg.RetryBaseDelay).
		Dur("inter_call", cfg.InterCallDelay).
		Bool("redis", cfg.RedisEnabled()).
		Bool("archive", cfg.ArchiveEnabled()).
		Msg("✅ Configuration loaded successfully")

	return cfg, nil
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	apiKey := getEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("API_KEY", "")
	}

	return &Config{
		AppEnv: getEnv("APP_ENV", "production"),

		GeminiBackend: getEnv("GEMINI_BACKEND", "gemini"),
		GeminiAPIKey:  apiKey,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		VertexProject:         getEnv("VERTEX_PROJECT", ""),
		VertexLocation:        getEnv("VERTEX_LOCATION", "us-central1"),
		VertexCredentialsJSON: getEnv("VERTEXAI_CREDENTIALS_JSON", ""),
		VertexCredentialsPath: getEnv("VERTEXAI_CREDENTIALS_PATH", ""),

		RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 5),
		RetryBaseDelay:   time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 3000)) * time.Millisecond,
		InterCallDelay:   time.Duration(getEnvInt("INTER_CALL_DELAY_MS", 2000)) * time.Millisecond,

		Port:         getEnv("PORT", "8080"),
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 5),
		AllowOrigins: getEnv("CORS_ALLOW_ORIGIN", "*"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MIN", 6),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 2),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		GuestDailyLimit: getEnvInt("GUEST_DAILY_LIMIT", 0),

		SupabaseURL:           strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "attachments"),
		WebPQuality:           float32(getEnvInt("WEBP_QUALITY", 90)),
	}
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		logger.L().Fatal().Msg("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 설정값 범위 검증
func (c *Config) validate() error {
	if c.GeminiBackend != "gemini" && c.GeminiBackend != "vertex" {
		return fmt.Errorf("GEMINI_BACKEND must be gemini or vertex")
	}
	if c.RetryMaxAttempts < 1 || c.RetryMaxAttempts > maxRetryAttempts {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be within [1,%d]", maxRetryAttempts)
	}
	if c.RetryBaseDelay < 0 || c.InterCallDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative")
	}
	if c.WebPQuality < 0 || c.WebPQuality > 100 {
		return fmt.Errorf("WEBP_QUALITY must be within [0,100]")
	}
	if (c.SupabaseURL == "") != (c.SupabaseServiceKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set together")
	}
	return nil
}

// RequireGemini - Gemini 호출이 필요한 커맨드에서만 자격 정보 검증
func (c *Config) RequireGemini() error {
	if c.GeminiBackend == "vertex" {
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEX_PROJECT is required when GEMINI_BACKEND=vertex")
		}
		return nil
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// ArchiveEnabled reports whether Supabase archival is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// MaxUploadBytes - 업로드 허용 최대 바이트
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return parsed
		}
		logger.L().Warn().Str("key", key).Str("value", raw).Msg("⚠️  invalid integer, using default")
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}
