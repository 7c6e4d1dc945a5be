package batch

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/security"
)

func echoDispatch(ctx context.Context, method string, params []byte, caller security.SecurityContext) (any, *protocol.JsonRpcError) {
	if method == "fail" {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInternal, Message: "boom"}
	}
	return map[string]string{"echo": method}, nil
}

func items(methods ...string) []protocol.BatchItem {
	out := make([]protocol.BatchItem, len(methods))
	for i, m := range methods {
		out[i] = protocol.BatchItem{ID: m, Method: m}
	}
	return out
}

func TestRunParallelPreservesOrder(t *testing.T) {
	e := NewEngine(echoDispatch, nil)
	params := protocol.BatchParams{
		Requests:      items("a", "b", "c", "d"),
		ExecutionMode: protocol.BatchParallel,
	}

	result, err := e.Run(context.Background(), params, security.System())
	require.NoError(t, err)
	require.Len(t, result.Results, 4)
	for i, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, id, result.Results[i].ID)
		assert.Nil(t, result.Results[i].Error)
	}
	assert.Equal(t, uint32(4), result.Stats.TotalRequests)
	assert.Equal(t, uint32(4), result.Stats.SuccessfulRequests)
}

func TestRunSequentialStopsOnError(t *testing.T) {
	e := NewEngine(echoDispatch, nil)
	caller := security.Anonymous()
	caller.Client.Metadata["stop_on_error"] = "true"

	params := protocol.BatchParams{
		Requests:      items("a", "fail", "b", "c"),
		ExecutionMode: protocol.BatchSequential,
	}

	result, err := e.Run(context.Background(), params, caller)
	require.NoError(t, err)
	require.Len(t, result.Results, 4)

	assert.Nil(t, result.Results[0].Error)
	assert.NotNil(t, result.Results[1].Error)
	assert.True(t, result.Results[2].Skipped)
	assert.True(t, result.Results[3].Skipped)
	assert.Equal(t, uint32(2), result.Stats.SkippedRequests)
	assert.Equal(t, uint32(1), result.Stats.FailedRequests)
	assert.Equal(t, uint32(1), result.Stats.SuccessfulRequests)
}

func TestRunSequentialContinuesWithoutStopOnError(t *testing.T) {
	e := NewEngine(echoDispatch, nil)
	params := protocol.BatchParams{
		Requests:      items("a", "fail", "b"),
		ExecutionMode: protocol.BatchSequential,
	}

	result, err := e.Run(context.Background(), params, security.Anonymous())
	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	assert.Nil(t, result.Results[0].Error)
	assert.NotNil(t, result.Results[1].Error)
	assert.Nil(t, result.Results[2].Error)
	assert.Equal(t, uint32(0), result.Stats.SkippedRequests)
}

func TestNestedBatchRejectedPerItemOnly(t *testing.T) {
	e := NewEngine(echoDispatch, nil)
	params := protocol.BatchParams{
		Requests:      items("a", "batch", "b"),
		ExecutionMode: protocol.BatchSequential,
	}

	result, err := e.Run(context.Background(), params, security.Anonymous())
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	assert.Nil(t, result.Results[0].Error)
	require.NotNil(t, result.Results[1].Error)
	assert.Equal(t, protocol.ErrInvalidRequest, result.Results[1].Error.Code)
	// siblings still execute, per scenario 7
	assert.Nil(t, result.Results[2].Error)
}

func TestRunExceedsMaxBatchSize(t *testing.T) {
	e := NewEngine(echoDispatch, nil)
	requests := make([]protocol.BatchItem, MaxBatchSize+1)
	for i := range requests {
		requests[i] = protocol.BatchItem{ID: "x", Method: "a"}
	}

	_, err := e.Run(context.Background(), protocol.BatchParams{Requests: requests}, security.Anonymous())
	assert.Error(t, err)
}

func TestEncodeResultPassesThroughRawMessage(t *testing.T) {
	raw := json.RawMessage(`{"already":"encoded"}`)
	out, err := encodeResult(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestMaxParallelForClampsToRequestCount(t *testing.T) {
	params := protocol.BatchParams{
		Requests:      items("a", "b"),
		ExecutionMode: protocol.BatchParallel,
	}
	assert.Equal(t, uint32(2), maxParallelFor(params))
}

func TestRunParallelHonorsDispatchConcurrently(t *testing.T) {
	var concurrent int32
	var maxSeen int32
	dispatch := func(ctx context.Context, method string, params []byte, caller security.SecurityContext) (any, *protocol.JsonRpcError) {
		n := atomic.AddInt32(&concurrent, 1)
		defer atomic.AddInt32(&concurrent, -1)
		for {
			m := atomic.LoadInt32(&maxSeen)
			if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
				break
			}
		}
		// Stay in flight long enough for sibling items to start.
		time.Sleep(20 * time.Millisecond)
		return nil, nil
	}

	e := NewEngine(dispatch, nil)
	params := protocol.BatchParams{
		Requests:      items("a", "b", "c", "d", "e", "f"),
		ExecutionMode: protocol.BatchParallel,
	}
	_, err := e.Run(context.Background(), params, security.Anonymous())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&maxSeen), int32(2))
}
