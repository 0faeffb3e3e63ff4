package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"floral-studio-server/modules/common/logger"
)

var (
	// ErrBusy - 같은 세션에서 생성이 진행 중
	ErrBusy = errors.New("session: generation already in progress")
	// ErrLimitReached - 게스트 일일 한도 도달
	ErrLimitReached = errors.New("session: daily generation limit reached")
)

const (
	// LockTTL - 보유자가 사라진 잠금의 자동 만료. 보유 중에는 LockTTL/3 마다 연장
	LockTTL = 5 * time.Minute
	// UsageWindow - 게스트 사용량 집계 구간
	UsageWindow = 24 * time.Hour
)

// Guard 는 세션당 동시에 하나의 생성만 허용합니다.
type Guard interface {
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// Usage 는 세션별 성공 생성 횟수를 집계합니다.
type Usage interface {
	Check(ctx context.Context, sessionID string) error
	Increment(ctx context.Context, sessionID string) error
}

func lockKey(sessionID string) string  { return fmt.Sprintf("floral:lock:%s", sessionID) }
func usageKey(sessionID string) string { return fmt.Sprintf("floral:usage:%s", sessionID) }

// ---------------------------------------------------------------------------
// Redis

var (
	// 토큰이 일치할 때만 삭제 / 연장 (만료 후 다른 요청이 잡은 잠금은 건드리지 않음)
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// RedisGuard - SETNX + 소유 토큰 기반 세션 잠금
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGuard - Redis 세션 잠금 생성
func NewRedisGuard(rdb *redis.Client) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: LockTTL}
}

func (g *RedisGuard) Acquire(ctx context.Context, sessionID string) (func(), error) {
	if sessionID == "" {
		return func() {}, nil
	}
	key := lockKey(sessionID)
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "session: acquire lock")
	}
	if !ok {
		return nil, ErrBusy
	}

	stop := keepAlive(g.ttl, func() bool { return g.refresh(key, token) })
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			// 요청 ctx 가 이미 취소됐을 수 있으므로 별도 ctx 사용
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, g.rdb, []string{key}, token).Err(); err != nil {
				logger.L().Warn().Err(err).Str("session", sessionID).Msg("⚠️  [Session] Failed to release lock")
			}
		})
	}, nil
}

// refresh - 아직 소유 중이면 TTL 연장. false 면 잠금을 잃은 것
func (g *RedisGuard) refresh(key, token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := refreshScript.Run(ctx, g.rdb, []string{key}, token, g.ttl.Milliseconds()).Int()
	if err != nil {
		logger.L().Warn().Err(err).Str("key", key).Msg("⚠️  [Session] Failed to refresh lock")
		return true
	}
	return n == 1
}

// keepAlive - ttl/3 마다 extend 호출. extend 가 false 를 돌려주거나 stop 호출 시 종료
func keepAlive(ttl time.Duration, extend func() bool) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !extend() {
					return
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// RedisUsage - INCR + EXPIRE 기반 사용량 카운터
type RedisUsage struct {
	rdb   *redis.Client
	limit int
}

// NewRedisUsage - limit <= 0 이면 무제한
func NewRedisUsage(rdb *redis.Client, limit int) *RedisUsage {
	return &RedisUsage{rdb: rdb, limit: limit}
}

func (u *RedisUsage) Check(ctx context.Context, sessionID string) error {
	if u.limit <= 0 || sessionID == "" {
		return nil
	}
	count, err := u.rdb.Get(ctx, usageKey(sessionID)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "session: read usage")
	}
	if count >= u.limit {
		return ErrLimitReached
	}
	return nil
}

func (u *RedisUsage) Increment(ctx context.Context, sessionID string) error {
	if u.limit <= 0 || sessionID == "" {
		return nil
	}
	key := usageKey(sessionID)
	count, err := u.rdb.Incr(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "session: increment usage")
	}
	// 첫 사용 시에만 윈도우 시작
	if count == 1 {
		if err := u.rdb.Expire(ctx, key, UsageWindow).Err(); err != nil {
			return errors.Wrap(err, "session: set usage window")
		}
	}
	logger.L().Debug().Str("session", sessionID).Int64("count", count).Msg("📊 [Session] Usage incremented")
	return nil
}

// ---------------------------------------------------------------------------
// In-memory (Redis 미설정 시)

// MemoryGuard - go-cache 기반 세션 잠금 (단일 프로세스)
type MemoryGuard struct {
	mu  sync.Mutex
	c   *cache.Cache
	ttl time.Duration
}

// NewMemoryGuard - 메모리 세션 잠금 생성
func NewMemoryGuard() *MemoryGuard {
	return newMemoryGuard(LockTTL)
}

func newMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{c: cache.New(ttl, time.Minute), ttl: ttl}
}

func (g *MemoryGuard) Acquire(ctx context.Context, sessionID string) (func(), error) {
	if sessionID == "" {
		return func() {}, nil
	}
	key := lockKey(sessionID)
	token := uuid.NewString()

	g.mu.Lock()
	err := g.c.Add(key, token, g.ttl)
	g.mu.Unlock()
	if err != nil {
		return nil, ErrBusy
	}

	stop := keepAlive(g.ttl, func() bool { return g.refresh(key, token) })
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.owns(key, token) {
				g.c.Delete(key)
			}
		})
	}, nil
}

func (g *MemoryGuard) refresh(key, token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.owns(key, token) {
		return false
	}
	g.c.Set(key, token, g.ttl)
	return true
}

// owns - g.mu 를 잡은 상태에서 호출
func (g *MemoryGuard) owns(key, token string) bool {
	v, ok := g.c.Get(key)
	return ok && v == token
}

// MemoryUsage - go-cache 기반 사용량 카운터
type MemoryUsage struct {
	c     *cache.Cache
	limit int
}

// NewMemoryUsage - limit <= 0 이면 무제한
func NewMemoryUsage(limit int) *MemoryUsage {
	return &MemoryUsage{c: cache.New(UsageWindow, 10*time.Minute), limit: limit}
}

func (u *MemoryUsage) Check(ctx context.Context, sessionID string) error {
	if u.limit <= 0 || sessionID == "" {
		return nil
	}
	if v, ok := u.c.Get(usageKey(sessionID)); ok && v.(int) >= u.limit {
		return ErrLimitReached
	}
	return nil
}

func (u *MemoryUsage) Increment(ctx context.Context, sessionID string) error {
	if u.limit <= 0 || sessionID == "" {
		return nil
	}
	key := usageKey(sessionID)
	// 첫 사용 시 윈도우 시작, 이후에는 만료 시각 유지
	if err := u.c.Add(key, 1, cache.DefaultExpiration); err == nil {
		return nil
	}
	if _, err := u.c.IncrementInt(key, 1); err != nil {
		return u.c.Add(key, 1, cache.DefaultExpiration)
	}
	return nil
}
