package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"floral-studio-server/modules/common/logger"
)

// Client - Supabase Storage REST 업로드 클라이언트
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient(baseURL, serviceKey, bucket string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ObjectPath - floral/<session>/<requestId>_<n>.webp
func ObjectPath(sessionID, requestID string, index int) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return fmt.Sprintf("floral/%s/%s_%d.webp", sessionID, requestID, index)
}

// PublicURL - 공개 버킷 객체 URL
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
}

// UploadWebP - WebP 바이너리를 Supabase Storage 에 업로드하고 공개 URL 반환
func (c *Client) UploadWebP(ctx context.Context, objectPath string, webpData []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectPath)
	logger.L().Debug().Str("path", objectPath).Int("bytes", len(webpData)).Msg("📤 Uploading WebP image to storage")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(webpData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create upload request")
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "image/webp")
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to upload image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	logger.L().Info().Str("path", objectPath).Int("bytes", len(webpData)).Msg("✅ WebP image uploaded")
	return c.PublicURL(objectPath), nil
}
