package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image checks that data is a decodable JPEG, PNG, GIF or WebP image no larger
// than maxBytes and returns its sniffed content type.
func Image(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no file uploaded")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("file too large (max %dMB)", maxBytes/(1024*1024))
	}

	contentType := http.DetectContentType(data)
	wantFormat, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid image file")
	}
	if format != wantFormat {
		return "", fmt.Errorf("image content type mismatch")
	}
	return contentType, nil
}
