package s3client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresigner(t *testing.T, cfg Config) *ImagePresigner {
	t.Helper()
	cfg.AccessKeyId = "AKIDEXAMPLE"
	cfg.SecretAccessKey = "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY"
	p, err := NewImagePresigner(context.Background(), cfg)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestNewImagePresigner_RequiresBucket(t *testing.T) {
	_, err := NewImagePresigner(context.Background(), Config{})
	assert.Error(t, err)
}

func TestGetPresignedUrlForEventImage(t *testing.T) {
	ctx := context.Background()

	t.Run("aws urls", func(t *testing.T) {
		p := newTestPresigner(t, Config{Bucket: "summit-assets", Region: "us-west-2"})

		uploadUrl, downloadUrl, err := p.GetPresignedUrlForEventImage(ctx, ".JPG")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(downloadUrl, "https://summit-assets.s3.us-west-2.amazonaws.com/event-images/2024/07/"))
		assert.True(t, strings.HasSuffix(downloadUrl, ".jpg"))

		u, err := url.Parse(uploadUrl)
		require.NoError(t, err)
		assert.Equal(t, "summit-assets.s3.us-west-2.amazonaws.com", u.Host)
		assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
		assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	})

	t.Run("custom endpoint and public base", func(t *testing.T) {
		p := newTestPresigner(t, Config{
			Bucket:        "summit-assets",
			Endpoint:      "http://localhost:9000",
			PublicBaseURL: "https://cdn.example.com/",
		})

		uploadUrl, downloadUrl, err := p.GetPresignedUrlForEventImage(ctx, "png")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uploadUrl, "http://localhost:9000/summit-assets/event-images/"))
		assert.True(t, strings.HasPrefix(downloadUrl, "https://cdn.example.com/event-images/2024/07/"))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		p := newTestPresigner(t, Config{Bucket: "summit-assets"})
		_, _, err := p.GetPresignedUrlForEventImage(ctx, "exe")
		assert.True(t, errors.Is(err, ErrUnsupportedExtension))
	})
}
