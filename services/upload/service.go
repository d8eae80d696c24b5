// Package upload hands out presigned URLs for document uploads.
package upload

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/internal/trace"
	"github.com/upb/proof-layer/services"
)

// Presigner creates presigned PUT URLs
type Presigner interface {
	PresignPut(ctx context.Context, bucket, key string) (string, error)
}

// Request is the body of POST /presign
type Request struct {
	Filename string `json:"filename" validate:"required"`
}

// Presigned is a ready-to-use upload target
type Presigned struct {
	TraceID string `json:"trace_id"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	URL     string `json:"url"`
}

// Service builds trace-scoped upload keys and presigns them
type Service struct {
	presigner Presigner
	bucket    string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService creates an upload service. A nil presigner or empty bucket makes
// every Presign call fail with a configuration error.
func NewService(presigner Presigner, bucket string, logger *zap.Logger) *Service {
	return &Service{
		presigner: presigner,
		bucket:    bucket,
		logger:    logger,
		now:       time.Now,
		newID:     trace.NewID,
	}
}

// Presign allocates a trace id and returns a presigned URL for filename
func (s *Service) Presign(ctx context.Context, filename string) (*Presigned, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, services.WrapValidation("filename is required", services.ErrInvalidInput)
	}
	if s.presigner == nil || s.bucket == "" {
		return nil, services.WrapConfiguration("S3_BUCKET_NAME is not configured", services.ErrStorageNotConfigured)
	}

	traceID := s.newID()
	key := trace.BuildUploadKey(s.now(), traceID, filename)

	url, err := s.presigner.PresignPut(ctx, s.bucket, key)
	if err != nil {
		return nil, err
	}

	s.logger.Info("presign_created",
		zap.String("trace_id", traceID),
		zap.String("bucket", s.bucket),
		zap.String("key", key))

	return &Presigned{TraceID: traceID, Bucket: s.bucket, Key: key, URL: url}, nil
}
