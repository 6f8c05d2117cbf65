package vision

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/ternarybob/soundbite/internal/models"
)

const dataURLPrefix = "data:"

// EncodeDataURL returns data:<mime>;base64,<payload>
func EncodeDataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(dataURLPrefix) + len(mimeType) + 8 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(dataURLPrefix)
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ParseDataURL splits a base64 data URL into its MIME type and decoded bytes
func ParseDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return "", nil, models.NewValidationError("image", "Image must be a data URL")
	}

	header, payload, found := strings.Cut(dataURL[len(dataURLPrefix):], ",")
	if !found {
		return "", nil, models.NewValidationError("image", "Malformed data URL")
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 || mimeType == "" {
		return "", nil, models.NewValidationError("image", "Data URL must carry a base64 payload with a MIME type")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, models.NewValidationError("image", "Data URL payload is not valid base64")
	}
	if len(data) == 0 {
		return "", nil, models.NewValidationError("image", "No file provided")
	}

	return mimeType, data, nil
}

// ValidateImage checks size and content type of an uploaded image and
// returns the sniffed MIME type. The client-declared type is not trusted.
func ValidateImage(data []byte, maxSize int64, supported []string) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("image", "No file provided")
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", models.NewValidationError("image",
			fmt.Sprintf("File size too large. Maximum size is %s", humanize.IBytes(uint64(maxSize))))
	}

	detected := mimetype.Detect(data)
	for _, format := range supported {
		if detected.Is(format) {
			return format, nil
		}
	}

	return "", models.NewValidationError("image",
		fmt.Sprintf("Unsupported file format. Supported formats: %s", strings.Join(supported, ", ")))
}
