package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"legalchat/internal/config"
)

func TestUploadKey(t *testing.T) {
	assert.Equal(t, "uploads/abc.pdf", UploadKey("abc", ".pdf"))
	assert.Equal(t, "uploads/abc", UploadKey("abc", ""))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		msg  string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{}, msg: "endpoint is required"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000"}, msg: "credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, msg: "bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, a)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}
