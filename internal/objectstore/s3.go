// Package objectstore wraps the S3 operations used by uploads and ingestion:
// presigned PUT URLs and object downloads.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/upb/proof-layer/services"
)

// DefaultPresignTTL is how long a presigned upload URL stays valid
const DefaultPresignTTL = time.Hour

// UploadContentType is signed into presigned PUT URLs; clients must send it
const UploadContentType = "text/plain"

// Config configures the S3 client
type Config struct {
	Region     string
	Endpoint   string // optional, for S3-compatible stores such as MinIO or LocalStack
	PresignTTL time.Duration
}

// Client performs S3 presign and download operations
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
	ttl     time.Duration
}

// New builds a client from the default AWS credential chain
func New(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, services.WrapConfiguration("failed to load AWS configuration", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewFromClient(client, cfg.PresignTTL), nil
}

// NewFromClient wraps an existing S3 client. ttl <= 0 uses DefaultPresignTTL.
func NewFromClient(client *s3.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &Client{s3: client, presign: s3.NewPresignClient(client), ttl: ttl}
}

// TTL returns the presigned URL lifetime
func (c *Client) TTL() time.Duration {
	return c.ttl
}

// PresignPut returns a URL that accepts a single PUT of a text/plain object
func (c *Client) PresignPut(ctx context.Context, bucket, key string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(UploadContentType),
	}, s3.WithPresignExpires(c.ttl))
	if err != nil {
		return "", services.WrapProvider("failed to presign upload URL", err)
	}
	return req.URL, nil
}

// Get downloads an object. A missing key is a not-found error.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, services.NewDomainError(services.ErrorTypeNotFound,
				fmt.Sprintf("object s3://%s/%s not found", bucket, key), services.ErrObjectNotFound)
		}
		return nil, services.WrapProvider(fmt.Sprintf("failed to get s3://%s/%s", bucket, key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, services.WrapProvider("failed to read object body", err)
	}
	return data, nil
}
