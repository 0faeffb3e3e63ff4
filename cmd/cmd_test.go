package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floral-studio-server/modules/floral"
)

func TestPromptsCommandJSON(t *testing.T) {
	paramFlags = floral.Params{GiftType: "gift_box", Size: 65, Scene: "qilou", Style: "vintage", Composition: "couple"}
	promptsJSON = true
	defer func() { promptsJSON = false }()

	var out bytes.Buffer
	promptsCmd.SetOut(&out)
	require.NoError(t, promptsCmd.RunE(promptsCmd, nil))

	var plan []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &plan))
	require.Len(t, plan, 4)
	assert.Contains(t, plan[0], "posing with the exact flowers in a gift_box")
	assert.Contains(t, plan[0], "spectacular giant bouquet")
	assert.Contains(t, plan[0], "historic Qilou street")
}

func TestPromptsCommandRejectsBadParams(t *testing.T) {
	paramFlags = floral.Params{GiftType: "vase"}
	assert.Error(t, promptsCmd.RunE(promptsCmd, nil))
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	path, err := saveImage(dir, 0, floral.GeneratedImage{Data: []byte("jpegdata"), MimeType: "image/jpeg"}, false, 90)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "floral_1.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "png", extensionFor(""))
	assert.Equal(t, "png", extensionFor("image/png"))
	assert.Equal(t, "jpg", extensionFor("IMAGE/JPEG"))
	assert.Equal(t, "webp", extensionFor("image/webp"))
}
