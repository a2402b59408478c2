package analysis

import (
	"net/http"

	"github.com/lrchart/chartai/internal/core"
)

// SupportedMIMETypes are the chart image formats accepted for analysis.
var SupportedMIMETypes = []string{"image/png", "image/jpeg", "image/webp"}

// DetectMIME sniffs the image format from its leading bytes.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// CheckImage validates a chart image before it is sent to a model.
func CheckImage(image []byte, mimeType string) error {
	if len(image) == 0 {
		return core.ErrImageRequired
	}
	for _, m := range SupportedMIMETypes {
		if m == mimeType {
			return nil
		}
	}
	return core.ErrUnsupportedImage
}
