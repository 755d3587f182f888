package chat

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var tinyPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestEncodeImageFile(t *testing.T) {
	path := writeTempFile(t, "pixel.png", tinyPNG)

	dataURL, err := EncodeImageFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	require.Equal(t, tinyPNG, decoded)
}

func TestEncodeImageFileRejectsNonImage(t *testing.T) {
	path := writeTempFile(t, "notes.txt", []byte("just some text"))

	_, err := EncodeImageFile(path)
	require.ErrorContains(t, err, "not an image")
}

func TestEncodeImageFileRejectsOversized(t *testing.T) {
	big := make([]byte, maxImageSize+1)
	copy(big, tinyPNG)
	path := writeTempFile(t, "big.png", big)

	_, err := EncodeImageFile(path)
	require.ErrorContains(t, err, "too large")
}

func TestEncodeImageFileMissingFile(t *testing.T) {
	_, err := EncodeImageFile(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}
