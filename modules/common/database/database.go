package database

import (
	"context"

	"github.com/pkg/errors"
	"github.com/supabase-community/supabase-go"

	"floral-studio-server/modules/common/logger"
)

// GenerationsTable - 생성 기록 테이블
const GenerationsTable = "floral_generations"

// 생성 결과 상태
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// GenerationRecord - floral_generations 행
type GenerationRecord struct {
	RequestID    string   `json:"request_id"`
	SessionID    string   `json:"session_id,omitempty"`
	GiftType     string   `json:"gift_type"`
	SizeCm       int      `json:"size_cm"`
	Scene        string   `json:"scene"`
	Style        string   `json:"style"`
	Composition  string   `json:"composition"`
	ArtisticMode bool     `json:"artistic_mode"`
	Requested    int      `json:"requested"`
	Generated    int      `json:"generated"`
	Status       string   `json:"status"`
	ImagePaths   []string `json:"image_paths,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// StatusFor - 요청/생성 수로 상태 결정
func StatusFor(requested, generated int) string {
	switch {
	case generated == 0:
		return StatusFailed
	case generated < requested:
		return StatusPartial
	default:
		return StatusCompleted
	}
}

// Client - Supabase 테이블 클라이언트
type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient(url, serviceKey string) (*Client, error) {
	supabaseClient, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Supabase client")
	}
	return &Client{supabase: supabaseClient}, nil
}

// InsertGeneration - 생성 기록 1건 저장
func (c *Client) InsertGeneration(ctx context.Context, rec GenerationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := c.supabase.From(GenerationsTable).
		Insert(rec, false, "", "minimal", "").
		Execute()
	if err != nil {
		return errors.Wrap(err, "failed to insert generation record")
	}

	logger.L().Info().
		Str("request_id", rec.RequestID).
		Str("status", rec.Status).
		Int("generated", rec.Generated).
		Msg("✅ Generation record saved")
	return nil
}
