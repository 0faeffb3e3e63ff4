package floral

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/common/middleware"
	"floral-studio-server/modules/common/utils"
)

// 스트림 이벤트 타입
const (
	EventStarted   = "started"
	EventImage     = "image"
	EventCompleted = "completed"
	EventError     = "error"
)

const (
	streamReadTimeout  = 30 * time.Second
	streamWriteTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// CORS 미들웨어와 동일하게 origin 검사는 하지 않음
		return true
	},
}

// StreamEvent - /ws/floral 로 내려가는 메시지
type StreamEvent struct {
	Type         string    `json:"type"`
	RequestID    string    `json:"requestId,omitempty"`
	Requested    int       `json:"requested,omitempty"`
	Index        *int      `json:"index,omitempty"`
	MimeType     string    `json:"mimeType,omitempty"`
	DataURL      string    `json:"dataUrl,omitempty"`
	Generated    int       `json:"generated,omitempty"`
	Partial      bool      `json:"partial,omitempty"`
	Warning      string    `json:"warning,omitempty"`
	URLs         []string  `json:"urls,omitempty"`
	ErrorCode    ErrorCode `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// HandleStream - GET /ws/floral
// 클라이언트가 generate 메시지 1개를 보내면 이미지가 나올 때마다 이벤트 전송 후 종료
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn().Err(err).Msg("❌ [Floral WS] Upgrade failed")
		return
	}
	defer conn.Close()

	requestID := middleware.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.L().With().Str("request_id", requestID).Logger()

	conn.SetReadLimit(h.maxBodyBytes())
	_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

	var body GenerateRequest
	if err := conn.ReadJSON(&body); err != nil {
		log.Warn().Err(err).Msg("❌ [Floral WS] Invalid generate message")
		h.send(conn, StreamEvent{Type: EventError, RequestID: requestID, ErrorCode: CodeInvalidRequest, ErrorMessage: "Invalid request format"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 클라이언트 종료 감지 → 다음 대기 지점에서 생성 중단
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	prepared, apiErr := h.prepare(ctx, requestID, body)
	if apiErr != nil {
		h.send(conn, StreamEvent{Type: EventError, RequestID: requestID, ErrorCode: apiErr.code, ErrorMessage: apiErr.message})
		return
	}
	defer prepared.release()

	h.send(conn, StreamEvent{Type: EventStarted, RequestID: requestID, Requested: PlanSize})

	onImage := func(index int, img GeneratedImage) {
		i := index
		h.send(conn, StreamEvent{
			Type:      EventImage,
			RequestID: requestID,
			Index:     &i,
			MimeType:  img.MimeType,
			DataURL:   utils.EncodeDataURL(img.Data, img.MimeType),
		})
	}

	resp, apiErr := h.run(ctx, requestID, prepared, onImage)
	if apiErr != nil {
		h.send(conn, StreamEvent{Type: EventError, RequestID: requestID, ErrorCode: apiErr.code, ErrorMessage: apiErr.message})
		return
	}

	done := StreamEvent{
		Type:      EventCompleted,
		RequestID: requestID,
		Requested: resp.Requested,
		Generated: len(resp.Images),
		Partial:   resp.Partial,
		Warning:   resp.Warning,
	}
	for _, img := range resp.Images {
		if img.URL != "" {
			done.URLs = append(done.URLs, img.URL)
		}
	}
	h.send(conn, done)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
}

func (h *Handler) send(conn *websocket.Conn, ev StreamEvent) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteJSON(ev); err != nil {
		logger.L().Debug().Err(err).Str("type", ev.Type).Msg("⚠️  [Floral WS] Write failed")
	}
}
