package imagecodec

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const genericBinaryMIME = "application/octet-stream"

// normalizeMimeType parses a Content-Type style value down to its lowercase media type.
func normalizeMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

// resolveMimeType prefers the type the upload declared and falls back to sniffing the bytes.
func resolveMimeType(data []byte, declared string) string {
	if declared != "" {
		if mediaType, err := normalizeMimeType(declared); err == nil && mediaType != genericBinaryMIME {
			return mediaType
		}
	}
	detected := mimetype.Detect(data)
	if mediaType, err := normalizeMimeType(detected.String()); err == nil {
		return mediaType
	}
	return genericBinaryMIME
}

func isImageMime(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}
