package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"floral-studio-server/modules/common/config"
	"floral-studio-server/modules/common/middleware"
	"floral-studio-server/modules/floral"
)

// ServiceName - 헬스체크에 표시되는 서비스 이름
const ServiceName = "floral-studio"

// ServerMetrics - 서버 메트릭
type ServerMetrics struct {
	TotalGenerations   int       `json:"totalGenerations"`
	ActiveGenerations  int       `json:"activeGenerations"`
	PartialGenerations int       `json:"partialGenerations"`
	FailedGenerations  int       `json:"failedGenerations"`
	ImagesGenerated    int       `json:"imagesGenerated"`
	StartTime          time.Time `json:"startTime"`
	mutex              sync.RWMutex
}

// NewMetrics - 시작 시각 기록
func NewMetrics() *ServerMetrics {
	return &ServerMetrics{StartTime: time.Now()}
}

func (m *ServerMetrics) GenerationStarted() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.TotalGenerations++
	m.ActiveGenerations++
}

func (m *ServerMetrics) GenerationFinished(generated, requested int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ActiveGenerations--
	m.ImagesGenerated += generated
	switch {
	case err != nil:
		m.FailedGenerations++
	case generated < requested:
		m.PartialGenerations++
	}
}

// Snapshot - 잠금 없이 읽을 수 있는 복사본
func (m *ServerMetrics) Snapshot() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return map[string]interface{}{
		"totalGenerations":   m.TotalGenerations,
		"activeGenerations":  m.ActiveGenerations,
		"partialGenerations": m.PartialGenerations,
		"failedGenerations":  m.FailedGenerations,
		"imagesGenerated":    m.ImagesGenerated,
		"startTime":          m.StartTime,
		"uptime":             time.Since(m.StartTime).Round(time.Second).String(),
	}
}

// NewRouter - 라우터 설정
func NewRouter(cfg *config.Config, h *floral.Handler, metrics *ServerMetrics) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.HandleFunc("/", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/metrics", getMetrics(metrics)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/floral").Subrouter()
	api.HandleFunc("/options", h.HandleOptions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/prompts", h.HandlePrompts).Methods(http.MethodPost, http.MethodOptions)

	limited := middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst, cfg.TrustProxy)
	api.Handle("/generate", limited(http.HandlerFunc(h.HandleGenerate))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/ws/floral", limited(http.HandlerFunc(h.HandleStream)))

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func getMetrics(metrics *ServerMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics.Snapshot())
	}
}
