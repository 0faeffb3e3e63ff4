package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"floral-studio-server/modules/common/config"
	"floral-studio-server/modules/common/database"
	"floral-studio-server/modules/common/gemini"
	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/common/redis"
	"floral-studio-server/modules/common/session"
	"floral-studio-server/modules/common/storage"
	"floral-studio-server/modules/floral"
	"floral-studio-server/modules/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if err := cfg.RequireGemini(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, usage, rdb := buildSession(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	metrics := server.NewMetrics()
	handler := floral.NewHandler(floral.Deps{
		Service:        svc,
		Guard:          guard,
		Usage:          usage,
		Archiver:       buildArchiver(cfg),
		Metrics:        metrics,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(cfg, handler, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Info().Str("port", cfg.Port).Msg("🚀 Floral Studio Server starting")
		logger.L().Info().Msgf("📡 WebSocket endpoint: ws://localhost:%s/ws/floral", cfg.Port)
		logger.L().Info().Msgf("❤️  Health check: http://localhost:%s/health", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info().Msg("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildService - 설정값으로 재시도 정책과 클라이언트 팩토리 구성
func buildService(cfg *config.Config) (*floral.Service, error) {
	orchestrator := &floral.Orchestrator{
		Policy: gemini.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
		},
		InterCallDelay: cfg.InterCallDelay,
		Sleep:          gemini.SleepContext,
	}
	opts := gemini.ClientOptions{
		Backend:  cfg.GeminiBackend,
		APIKey:   cfg.GeminiAPIKey,
		Project:  cfg.VertexProject,
		Location: cfg.VertexLocation,
		Model:    cfg.GeminiModel,
	}
	if cfg.GeminiBackend == gemini.BackendVertex {
		creds, err := gemini.LoadVertexCredentials(cfg.VertexCredentialsJSON, cfg.VertexCredentialsPath)
		if err != nil {
			return nil, err
		}
		opts.CredentialsJSON = creds
	}
	return floral.NewService(gemini.NewClientFactory(opts), orchestrator), nil
}

// buildSession - Redis 가 있으면 Redis, 없거나 연결 실패 시 메모리
func buildSession(ctx context.Context, cfg *config.Config) (session.Guard, session.Usage, *goredis.Client) {
	if cfg.RedisEnabled() {
		rdb, err := redis.Connect(ctx, cfg)
		if err == nil {
			return session.NewRedisGuard(rdb), session.NewRedisUsage(rdb, cfg.GuestDailyLimit), rdb
		}
		logger.L().Warn().Err(err).Msg("⚠️  Redis unavailable, falling back to in-memory session guard")
	}
	return session.NewMemoryGuard(), session.NewMemoryUsage(cfg.GuestDailyLimit), nil
}

// buildArchiver - Supabase 가 설정된 경우에만 보관
func buildArchiver(cfg *config.Config) floral.Archiver {
	if !cfg.ArchiveEnabled() {
		return nil
	}
	store := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	db, err := database.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		logger.L().Warn().Err(err).Msg("⚠️  Supabase client unavailable, archiving images without records")
		return floral.NewSupabaseArchiver(store, nil, cfg.WebPQuality)
	}
	logger.L().Info().Str("bucket", cfg.SupabaseStorageBucket).Msg("🗄️  Archival enabled")
	return floral.NewSupabaseArchiver(store, db, cfg.WebPQuality)
}
