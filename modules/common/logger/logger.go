package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init - APP_ENV 기준으로 전역 로거 재구성 (development 는 콘솔 출력 + debug 레벨)
func Init(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	mu.Lock()
	global = l
	mu.Unlock()
	return l
}

// L returns the process-wide logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// SetOutput swaps the global logger, mostly for tests.
func SetOutput(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}
