package gemini

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"floral-studio-server/modules/common/logger"
)

// Image - 요청/응답에 오가는 불투명 이미지 페이로드 (바이너리 + MIME 타입)
type Image struct {
	Data     []byte
	MimeType string
}

// ImageGenerator 는 참조 이미지와 프롬프트 한 개로 이미지 한 장을 만드는 원격 기능입니다.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, ref Image, prompt string) (*Image, error)
}

// ClientFactory - 요청마다 새 클라이언트를 획득 (최신 API 키 상태 반영)
type ClientFactory func(ctx context.Context) (ImageGenerator, error)

// 백엔드 종류
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// AspectRatio - 생성 이미지 비율 (세로 인물 사진)
const AspectRatio = "3:4"

// ClientOptions - 클라이언트 생성 옵션
type ClientOptions struct {
	Backend  string
	APIKey   string
	Project  string
	Location string
	Model    string
	// 비어 있으면 genai 기본 엔드포인트
	BaseURL string
	// Vertex 서비스 계정 JSON (비어 있으면 ADC 사용)
	CredentialsJSON []byte
}

// Client - genai 기반 ImageGenerator 구현
type Client struct {
	genaiClient *genai.Client
	model       string
}

// NewClient - Gemini API 또는 Vertex AI 클라이언트 생성
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	cc, err := genaiConfig(opts)
	if err != nil {
		return nil, err
	}

	genaiClient, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "gemini: create client")
	}

	return &Client{
		genaiClient: genaiClient,
		model:       opts.Model,
	}, nil
}

// NewClientFactory returns a factory that builds a fresh Client on every call.
func NewClientFactory(opts ClientOptions) ClientFactory {
	return func(ctx context.Context) (ImageGenerator, error) {
		return NewClient(ctx, opts)
	}
}

// GenerateImage - 참조 이미지 + 프롬프트로 generateContent 1회 호출
func (c *Client) GenerateImage(ctx context.Context, ref Image, prompt string) (*Image, error) {
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromBytes(ref.Data, ref.MimeType),
			genai.NewPartFromText(prompt),
		},
	}

	result, err := c.genaiClient.Models.GenerateContent(
		ctx,
		c.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: AspectRatio,
			},
		},
	)
	if err != nil {
		return nil, err
	}

	img, err := FirstImage(result)
	if err != nil {
		return nil, err
	}

	logger.L().Debug().
		Str("model", c.model).
		Str("mime_type", img.MimeType).
		Int("bytes", len(img.Data)).
		Msg("✅ [Gemini] Image generated")
	return img, nil
}

// FirstImage - 첫 번째 후보의 첫 InlineData 파트를 결과로 사용
func FirstImage(resp *genai.GenerateContentResponse) (*Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoImageData
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &Image{Data: part.InlineData.Data, MimeType: mimeType}, nil
		}
	}

	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		return nil, errors.Wrapf(ErrNoImageData, "finish reason %s", candidate.FinishReason)
	}
	return nil, ErrNoImageData
}
