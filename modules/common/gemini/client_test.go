package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path string
	body map[string]interface{}
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &body))
		captured = append(captured, capturedRequest{path: r.URL.Path, body: body})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), ClientOptions{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash-image",
		BaseURL: baseURL + "/",
	})
	require.NoError(t, err)
	return c
}

func TestClientGenerateImageRequest(t *testing.T) {
	out := []byte("generated-png")
	resp := `{"candidates":[{"content":{"role":"model","parts":[{"text":"here you go"},` +
		`{"inlineData":{"mimeType":"image/png","data":"` + base64.StdEncoding.EncodeToString(out) + `"}}]},` +
		`"finishReason":"STOP"}]}`
	srv, captured := newTestServer(t, http.StatusOK, resp)

	ref := Image{Data: []byte("reference-jpeg"), MimeType: "image/jpeg"}
	img, err := newTestClient(t, srv.URL).GenerateImage(context.Background(), ref, "a bouquet at dusk")
	require.NoError(t, err)
	assert.Equal(t, out, img.Data)
	assert.Equal(t, "image/png", img.MimeType)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.True(t, strings.HasSuffix(req.path, "models/gemini-2.5-flash-image:generateContent"), req.path)

	contents := req.body["contents"].([]interface{})
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)

	inline := parts[0].(map[string]interface{})["inlineData"].(map[string]interface{})
	assert.Equal(t, "image/jpeg", inline["mimeType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(ref.Data), inline["data"])
	assert.Equal(t, "a bouquet at dusk", parts[1].(map[string]interface{})["text"], "prompt follows the reference image")

	genConfig := req.body["generationConfig"].(map[string]interface{})
	imageConfig := genConfig["imageConfig"].(map[string]interface{})
	assert.Equal(t, "3:4", imageConfig["aspectRatio"])
}

func TestClientGenerateImageRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)

	_, err := newTestClient(t, srv.URL).GenerateImage(context.Background(), Image{Data: []byte("x"), MimeType: "image/png"}, "p")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.True(t, IsQuotaExceeded(err))
}

func TestClientGenerateImageBadRequest(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"Invalid argument","status":"INVALID_ARGUMENT"}}`)

	_, err := newTestClient(t, srv.URL).GenerateImage(context.Background(), Image{Data: []byte("x"), MimeType: "image/png"}, "p")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.False(t, IsQuotaExceeded(err))
}

func TestClientGenerateImageWithoutImagePart(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"no image today"}]},"finishReason":"STOP"}]}`)

	_, err := newTestClient(t, srv.URL).GenerateImage(context.Background(), Image{Data: []byte("x"), MimeType: "image/png"}, "p")
	assert.ErrorIs(t, err, ErrNoImageData)
}
