package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// maxImageSize caps inline attachments; the image travels as a data URL
// inside the chat payload, so it has to fit a websocket message.
const maxImageSize = 512 * 1024

// EncodeImageFile converts an image file to a data URL for inline
// sending.
func EncodeImageFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if info.Size() > maxImageSize {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", info.Size(), maxImageSize)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("not an image: %s", mtype.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
