package floral

import (
	"context"
	"time"

	"floral-studio-server/modules/common/database"
	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/common/storage"
	"floral-studio-server/modules/common/utils"
)

// ArchiveMeta - 보관 시 필요한 요청 식별 정보
type ArchiveMeta struct {
	RequestID string
	SessionID string
}

// Archiver 는 결과를 외부 저장소에 보관하고 이미지별 공개 URL 을 돌려줍니다.
// 실패해도 생성 결과에는 영향을 주지 않음 (빈 URL)
type Archiver interface {
	Archive(ctx context.Context, meta ArchiveMeta, req GenerationRequest, result GenerationResult, genErr error) []string
}

// Uploader - WebP 업로드 (storage.Client)
type Uploader interface {
	UploadWebP(ctx context.Context, objectPath string, webpData []byte) (string, error)
}

// RecordStore - 생성 기록 저장 (database.Client)
type RecordStore interface {
	InsertGeneration(ctx context.Context, rec database.GenerationRecord) error
}

// SupabaseArchiver - WebP 변환 → Storage 업로드 → floral_generations 기록
type SupabaseArchiver struct {
	uploader Uploader
	records  RecordStore
	quality  float32
	timeout  time.Duration
	encode   func([]byte, float32) ([]byte, error)
}

// NewSupabaseArchiver - records 가 nil 이면 기록 저장은 생략
func NewSupabaseArchiver(uploader Uploader, records RecordStore, quality float32) *SupabaseArchiver {
	return &SupabaseArchiver{
		uploader: uploader,
		records:  records,
		quality:  quality,
		timeout:  30 * time.Second,
		encode:   utils.ConvertToWebP,
	}
}

func (a *SupabaseArchiver) Archive(ctx context.Context, meta ArchiveMeta, req GenerationRequest, result GenerationResult, genErr error) []string {
	// 클라이언트가 끊겨도 보관은 마무리
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	log := logger.L().With().Str("request_id", meta.RequestID).Logger()
	urls := make([]string, len(result.Images))
	var paths []string

	for i, img := range result.Images {
		webpData, err := a.encode(img.Data, a.quality)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("⚠️  [Archive] WebP conversion failed")
			continue
		}
		path := storage.ObjectPath(meta.SessionID, meta.RequestID, i)
		url, err := a.uploader.UploadWebP(ctx, path, webpData)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("⚠️  [Archive] Upload failed")
			continue
		}
		urls[i] = url
		paths = append(paths, path)
	}

	if a.records != nil {
		rec := database.GenerationRecord{
			RequestID:    meta.RequestID,
			SessionID:    meta.SessionID,
			GiftType:     string(req.GiftType),
			SizeCm:       req.SizeCm,
			Scene:        req.Scene,
			Style:        req.Style,
			Composition:  string(req.Composition),
			ArtisticMode: req.ArtisticMode,
			Requested:    result.Requested,
			Generated:    len(result.Images),
			Status:       database.StatusFor(result.Requested, len(result.Images)),
			ImagePaths:   paths,
		}
		if genErr != nil {
			rec.ErrorMessage = genErr.Error()
		}
		if err := a.records.InsertGeneration(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("⚠️  [Archive] Failed to save generation record")
		}
	}

	return urls
}
