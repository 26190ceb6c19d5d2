package artifact

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/theirongolddev/greenlint/internal/config"
)

// Publisher uploads attested reports to an S3-compatible bucket.
type Publisher struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewPublisher validates cfg and builds a client. It does not contact the
// server.
func NewPublisher(cfg config.ArtifactConfig) (*Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("artifact endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("artifact access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("artifact bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &Publisher{client: client, bucket: bucket, region: region}, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Object is one file published under a report hash.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// ObjectKey is the bucket key for name under hash.
func ObjectKey(hash, name string) string {
	return path.Join("reports", hash[:2], hash, name)
}

// Publish uploads objs under the report hash and returns their keys. Keys
// are content-addressed, so republishing the same result is idempotent.
func (p *Publisher) Publish(ctx context.Context, hash string, objs ...Object) ([]string, error) {
	if len(hash) < 2 {
		return nil, fmt.Errorf("invalid report hash %q", hash)
	}
	if err := p.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		key := ObjectKey(hash, o.Name)
		ct := o.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(o.Data), int64(len(o.Data)), minio.PutObjectOptions{
			ContentType:  ct,
			UserMetadata: map[string]string{"report-sha256": hash},
		})
		if err != nil {
			return keys, fmt.Errorf("put %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
