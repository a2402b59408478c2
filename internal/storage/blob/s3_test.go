package blob

import (
	"strings"
	"testing"
)

func TestS3Storage_ImplementsReader(t *testing.T) {
	var _ Reader = (*S3Storage)(nil)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error for empty bucket")
	}
}

func TestS3Config_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "pairs.txt", "pairs.txt"},
		{"catalog", "pairs.txt", "catalog/pairs.txt"},
		{"catalog/", "pairs.txt", "catalog/pairs.txt"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.TrimSuffix(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}
