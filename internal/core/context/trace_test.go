package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceRoundTrip(t *testing.T) {
	ctx := WithTrace(context.Background(), &TraceContext{
		TraceID:   "trace-1",
		RequestID: "req-1",
	})

	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestTraceDefaults(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))
	// Untraced contexts still get a usable id for logging.
	assert.NotEmpty(t, GetTraceID(ctx))
}
