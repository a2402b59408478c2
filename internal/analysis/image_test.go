package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lrchart/chartai/internal/core"
)

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngHeader, "image/png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"gif", []byte("GIF89a"), "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.data))
		})
	}
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage(pngHeader, "image/png"))
	assert.NoError(t, CheckImage([]byte{1}, "image/jpeg"))
	assert.NoError(t, CheckImage([]byte{1}, "image/webp"))
	assert.ErrorIs(t, CheckImage(nil, "image/png"), core.ErrImageRequired)
	assert.ErrorIs(t, CheckImage([]byte{1}, "image/gif"), core.ErrUnsupportedImage)
	assert.ErrorIs(t, CheckImage([]byte{1}, ""), core.ErrUnsupportedImage)
}
