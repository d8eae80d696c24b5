// Package worker consumes S3 object-created notifications delivered through
// SQS and feeds each uploaded object to the ingestion service.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/services"
	"github.com/upb/proof-layer/services/ingest"
)

// Ingester ingests one stored object
type Ingester interface {
	Ingest(ctx context.Context, bucket, key string) (*ingest.Result, error)
}

// Object identifies an uploaded object
type Object struct {
	Bucket string
	Key    string
}

// Response is returned to the Lambda runtime once a batch is processed
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler processes SQS batches
type Handler struct {
	ingester Ingester
	logger   *zap.Logger
}

// NewHandler creates a worker handler
func NewHandler(ingester Ingester, logger *zap.Logger) *Handler {
	return &Handler{ingester: ingester, logger: logger}
}

// HandleSQS ingests every object referenced by the batch. The first failure
// is returned so the message is retried and eventually dead-lettered.
func (h *Handler) HandleSQS(ctx context.Context, event events.SQSEvent) (Response, error) {
	for _, record := range event.Records {
		objects, err := h.ParseBody(record.Body)
		if err != nil {
			h.logger.Error("failed to parse SQS message body",
				zap.String("message_id", record.MessageId), zap.Error(err))
			return Response{}, err
		}

		for _, obj := range objects {
			if _, err := h.ingester.Ingest(ctx, obj.Bucket, obj.Key); err != nil {
				h.logger.Error("error processing record",
					zap.String("message_id", record.MessageId),
					zap.String("bucket", obj.Bucket),
					zap.String("key", obj.Key),
					zap.Error(err))
				return Response{}, err
			}
		}
	}

	return Response{StatusCode: 200, Body: `"Processing completed"`}, nil
}

// ParseBody decodes an S3 event notification carried in an SQS message body.
// Keys are URL-decoded; records without a bucket or key are skipped.
func (h *Handler) ParseBody(body string) ([]Object, error) {
	var s3Event events.S3Event
	if err := json.Unmarshal([]byte(body), &s3Event); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("malformed S3 event: %v", err), services.ErrInvalidEvent)
	}

	objects := make([]Object, 0, len(s3Event.Records))
	for _, rec := range s3Event.Records {
		bucket := rec.S3.Bucket.Name
		key := rec.S3.Object.Key
		if key != "" {
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			} else {
				h.logger.Warn("could not URL-decode object key", zap.String("key", key), zap.Error(err))
			}
		}

		if bucket == "" || key == "" {
			h.logger.Warn("missing bucket or key in S3 event",
				zap.String("bucket", bucket), zap.String("key", key))
			continue
		}
		objects = append(objects, Object{Bucket: bucket, Key: key})
	}
	return objects, nil
}
