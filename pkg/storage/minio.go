package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
)

// Client uploads media to an S3 compatible bucket.
type Client struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	publicRead    bool
}

func NewClient(cfg environments.StorageConfig) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to reach storage: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	logger.Infof("Connected to object storage (bucket: %s)", cfg.Bucket)

	return &Client{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
		publicRead:    cfg.PublicRead,
	}, nil
}

// Upload stores data under key and returns its public URL. The object id is
// the bucket-qualified key.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (*domain.StoredObject, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if c.publicRead {
		opts.UserMetadata = map[string]string{"x-amz-acl": "public-read"}
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &domain.StoredObject{
		ID:        c.bucket + "/" + info.Key,
		Key:       info.Key,
		PublicURL: PublicURL(c.publicBaseURL, info.Key),
		Size:      info.Size,
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	return err
}

// PublicURL joins base and key, escaping each key segment.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// MediaKey builds the object key for an uploaded media item, namespaced by
// the contact's short id.
func MediaKey(shortID, mediaID, mimeType string, at time.Time) string {
	return fmt.Sprintf("%s/%d_%s%s", shortID, at.UnixMilli(), mediaID, ExtensionFor(mimeType))
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const defaultImageExtension = ".jpg"

// ExtensionFor maps an image MIME type to a file extension, ignoring
// parameters such as charset.
func ExtensionFor(mimeType string) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if ext, ok := extensions[base]; ok {
		return ext
	}
	return defaultImageExtension
}
