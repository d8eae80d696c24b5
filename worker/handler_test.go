package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/upb/proof-layer/services"
	"github.com/upb/proof-layer/services/ingest"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) Ingest(ctx context.Context, bucket, key string) (*ingest.Result, error) {
	args := m.Called(ctx, bucket, key)
	if r := args.Get(0); r != nil {
		return r.(*ingest.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

const s3Body = `{"Records":[
	{"s3":{"bucket":{"name":"proof-bucket"},"object":{"key":"uploads/2024/01/02/0b6f1c52-8d0e-4d8f-9a53-3f6f3c1d2e4a/my+notes%281%29.txt"}}},
	{"s3":{"bucket":{"name":""},"object":{"key":"orphan.txt"}}},
	{"s3":{"bucket":{"name":"proof-bucket"},"object":{"key":""}}}
]}`

func TestParseBody(t *testing.T) {
	h := NewHandler(nil, zaptest.NewLogger(t))

	tests := []struct {
		name     string
		body     string
		expected []Object
		wantErr  bool
	}{
		{
			name: "decodes keys and skips incomplete records",
			body: s3Body,
			expected: []Object{{
				Bucket: "proof-bucket",
				Key:    "uploads/2024/01/02/0b6f1c52-8d0e-4d8f-9a53-3f6f3c1d2e4a/my notes(1).txt",
			}},
		},
		{
			name:     "test event without records",
			body:     `{"Service":"Amazon S3","Event":"s3:TestEvent"}`,
			expected: []Object{},
		},
		{
			name:    "malformed body",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects, err := h.ParseBody(tt.body)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, services.ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, objects)
		})
	}
}

func TestHandleSQS(t *testing.T) {
	ing := &mockIngester{}
	ing.On("Ingest", mock.Anything, "proof-bucket", mock.AnythingOfType("string")).
		Return(&ingest.Result{TraceID: "t"}, nil).Once()

	h := NewHandler(ing, zap.NewNop())
	resp, err := h.HandleSQS(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{{MessageId: "m1", Body: s3Body}},
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	ing.AssertExpectations(t)
}

func TestHandleSQS_Failures(t *testing.T) {
	t.Run("malformed message", func(t *testing.T) {
		ing := &mockIngester{}
		h := NewHandler(ing, zap.NewNop())

		_, err := h.HandleSQS(context.Background(), events.SQSEvent{
			Records: []events.SQSMessage{{Body: "{"}},
		})

		require.Error(t, err)
		ing.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ingest error stops the batch", func(t *testing.T) {
		ing := &mockIngester{}
		ing.On("Ingest", mock.Anything, "b", "first.txt").Return(nil, errors.New("boom")).Once()
		h := NewHandler(ing, zap.NewNop())

		_, err := h.HandleSQS(context.Background(), events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{"key":"first.txt"}}}]}`},
				{Body: `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{"key":"second.txt"}}}]}`},
			},
		})

		require.EqualError(t, err, "boom")
		ing.AssertExpectations(t)
		ing.AssertNotCalled(t, "Ingest", mock.Anything, "b", "second.txt")
	})
}
