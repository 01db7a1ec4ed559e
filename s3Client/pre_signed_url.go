package s3client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadUrlExpiry = 15 * time.Minute

var ErrUnsupportedExtension = errors.New("unsupported image extension")

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3 compatible stores
	AccessKeyId     string // optional, falls back to the default credential chain
	SecretAccessKey string
	PublicBaseURL   string // optional, defaults to the virtual-hosted bucket URL
}

type ImagePresignerInterface interface {
	GetPresignedUrlForEventImage(ctx context.Context, extension string) (uploadUrl, downloadUrl string, err error)
}

type ImagePresigner struct {
	presign *s3.PresignClient
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewImagePresigner(ctx context.Context, cfg Config) (*ImagePresigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyId != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyId, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}

	return &ImagePresigner{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		now:     time.Now,
	}, nil
}

// GetPresignedUrlForEventImage returns a pre-signed upload url and the public
// download url the event's image field should point at.
func (p *ImagePresigner) GetPresignedUrlForEventImage(ctx context.Context, extension string) (string, string, error) {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	contentType, ok := imageContentTypes[extension]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, extension)
	}

	imagePath := path.Join("event-images", p.now().UTC().Format("2006/01"), uuid.NewString()+"."+extension)
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(imagePath),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadUrlExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign s3 url: %w", err)
	}

	downloadUrl := p.baseURL + "/" + (&url.URL{Path: imagePath}).EscapedPath()
	return req.URL, downloadUrl, nil
}
