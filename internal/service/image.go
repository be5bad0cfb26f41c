package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
)

// maxImageWidth bounds the pixels sent to the vision call. Phone photos
// are routinely 4000px wide, which wastes tokens and upload time.
const maxImageWidth = 1024

// EncodeImageDataURL validates the uploaded photo, downscales it when it
// is wider than maxImageWidth and returns it as a base64 JPEG data URL
// ready to embed in a chat message.
func EncodeImageDataURL(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	var b strings.Builder
	b.WriteString("data:image/jpeg;base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(buf.Bytes()))
	return b.String(), nil
}
