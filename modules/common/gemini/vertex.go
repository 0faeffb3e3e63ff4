package gemini

import (
	"os"

	"cloud.google.com/go/auth/credentials"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"floral-studio-server/modules/common/logger"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// LoadVertexCredentials - VERTEXAI_CREDENTIALS_JSON → VERTEXAI_CREDENTIALS_PATH 순서로 확인
// 둘 다 없으면 nil (Application Default Credentials 사용)
func LoadVertexCredentials(credsJSON, credsPath string) ([]byte, error) {
	if credsJSON != "" {
		logger.L().Info().Msg("✅ [VertexAI] Using VERTEXAI_CREDENTIALS_JSON from environment")
		return []byte(credsJSON), nil
	}
	if credsPath != "" {
		data, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read credentials file")
		}
		logger.L().Info().Str("path", credsPath).Msg("✅ [VertexAI] Using credentials from file")
		return data, nil
	}
	logger.L().Warn().Msg("⚠️  [VertexAI] No explicit credentials found, using Application Default Credentials")
	return nil, nil
}

// genaiConfig - 옵션을 genai.ClientConfig 로 변환
func genaiConfig(opts ClientOptions) (*genai.ClientConfig, error) {
	switch opts.Backend {
	case "", BackendGemini:
		if opts.APIKey == "" {
			return nil, errors.New("gemini: api key is required")
		}
		return &genai.ClientConfig{
			APIKey:      opts.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
		}, nil

	case BackendVertex:
		if opts.Project == "" || opts.Location == "" {
			return nil, errors.New("gemini: vertex backend needs project and location")
		}
		cc := &genai.ClientConfig{
			Backend:     genai.BackendVertexAI,
			Project:     opts.Project,
			Location:    opts.Location,
			HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
		}
		if len(opts.CredentialsJSON) > 0 {
			creds, err := credentials.DetectDefault(&credentials.DetectOptions{
				Scopes:          []string{cloudPlatformScope},
				CredentialsJSON: opts.CredentialsJSON,
			})
			if err != nil {
				return nil, errors.Wrap(err, "gemini: invalid vertex credentials")
			}
			cc.Credentials = creds
		}
		return cc, nil

	default:
		return nil, errors.Errorf("gemini: unknown backend %q", opts.Backend)
	}
}
