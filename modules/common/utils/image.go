package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"  // GIF 디코더 등록
	_ "image/jpeg" // JPEG 디코더 등록
	_ "image/png"  // PNG 디코더 등록
	"net/http"
	"strings"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/pkg/errors"

	"floral-studio-server/modules/common/logger"
)

var (
	// ErrEmptyImage - 이미지 데이터 없음
	ErrEmptyImage = errors.New("image data is empty")
	// ErrNotImage - 이미지가 아닌 페이로드
	ErrNotImage = errors.New("payload is not an image")
	// ErrTooLarge - 업로드 한도 초과
	ErrTooLarge = errors.New("image exceeds upload limit")
)

// DecodeDataURL - "data:<mime>;base64,<payload>" 또는 순수 base64 문자열 디코딩
// 첫 번째 콤마 앞부분은 버리고, 선언된 MIME 이 있으면 함께 돌려줌
func DecodeDataURL(raw string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", ErrEmptyImage
	}

	declared := ""
	payload := raw
	if idx := strings.Index(raw, ","); idx >= 0 {
		header := raw[:idx]
		payload = raw[idx+1:]
		if strings.HasPrefix(header, "data:") {
			declared = strings.TrimPrefix(header, "data:")
			declared = strings.TrimSuffix(declared, ";base64")
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// 패딩 없는 base64 도 허용
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", errors.Wrap(err, "decode base64 image")
		}
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	return data, declared, nil
}

// EncodeDataURL - 화면 표시용 data URL 생성
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DetectMime - 내용 기준으로 MIME 판별
// 스니퍼가 모르는 바이너리(HEIC 등)일 때만 선언된 image/* 타입을 사용
func DetectMime(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if sniffed == "application/octet-stream" && strings.HasPrefix(declared, "image/") {
		return declared
	}
	return sniffed
}

// ValidateImage - 크기 제한과 이미지 여부 확인 후 최종 MIME 반환
func ValidateImage(data []byte, declared string, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", errors.Wrapf(ErrTooLarge, "%d bytes > %d", len(data), maxBytes)
	}
	mimeType := DetectMime(data, declared)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", errors.Wrapf(ErrNotImage, "detected %s", mimeType)
	}
	return mimeType, nil
}

// ConvertToWebP - PNG/JPEG/WebP 바이너리를 WebP로 변환
func ConvertToWebP(data []byte, quality float32) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create WebP encoder options")
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, errors.Wrap(err, "failed to encode WebP")
	}

	webpData := webpBuffer.Bytes()
	logger.L().Debug().
		Str("from", format).
		Int("in_bytes", len(data)).
		Int("out_bytes", len(webpData)).
		Float32("quality", quality).
		Msg("🔄 Image converted to WebP")
	return webpData, nil
}
