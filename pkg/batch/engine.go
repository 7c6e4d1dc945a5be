// Package batch implements the batch execution engine: running a set of
// sub-requests either in parallel (bounded concurrency) or sequentially
// (optionally stopping on first error), and assembling an order-preserving
// BatchResult with real per-item timing. Grounded directly on
// original_source/src/server/service.rs's execute_batch_parallel /
// execute_batch_sequential.
package batch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/progress"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/security"
)

// defaultMaxParallel bounds concurrency when a batch request doesn't specify
// max_parallel.
const defaultMaxParallel = 10

// Dispatch executes a single sub-request and returns its raw JSON-RPC
// result or error. The engine is agnostic to what "executing a method"
// means — the dispatcher supplies this, re-entering its own method router
// with the caller's SecurityContext.
type Dispatch func(ctx context.Context, method string, params []byte, caller security.SecurityContext) (result any, rpcErr *protocol.JsonRpcError)

// Engine runs BatchParams against a Dispatch function.
type Engine struct {
	dispatch Dispatch
	reporter *progress.Reporter
}

// NewEngine builds a batch engine around a dispatch function. reporter may
// be nil, in which case progress updates are simply dropped.
func NewEngine(dispatch Dispatch, reporter *progress.Reporter) *Engine {
	return &Engine{dispatch: dispatch, reporter: reporter}
}

func (e *Engine) report(update progress.Update) {
	if e.reporter != nil {
		e.reporter.Report(update)
	}
}

// MaxBatchSize is the hard ceiling Run enforces on the number of
// sub-requests in one call. It is independent of the server's configured
// max_batch_size, which callers check themselves before invoking Run.
const MaxBatchSize = 1000

// Run executes params.Requests under params.ExecutionMode on behalf of ctx.
// A nested "batch" sub-request is rejected per-item (scenario 7): it fails
// with a -32600 error but its siblings still execute.
func (e *Engine) Run(ctx context.Context, params protocol.BatchParams, caller security.SecurityContext) (protocol.BatchResult, error) {
	if len(params.Requests) > MaxBatchSize {
		return protocol.BatchResult{}, &mcperrors.ValidationError{Message: "batch exceeds maximum allowed size"}
	}

	correlationID := progress.NewCorrelationID()
	e.report(progress.Started(correlationID, "batch execution started", len(params.Requests)))

	var (
		results []protocol.BatchItemResult
		err     error
	)
	switch params.ExecutionMode {
	case protocol.BatchParallel:
		results, err = e.runParallel(ctx, params, correlationID, caller)
	default:
		// Sequential, Dependency, and PriorityDependency all fold onto the
		// same ordered-with-optional-fail-fast execution.
		results, err = e.runSequential(ctx, params, correlationID, caller)
	}
	if err != nil {
		e.report(progress.Update{CorrelationID: correlationID, Phase: progress.PhaseFailed, Message: err.Error()})
		return protocol.BatchResult{}, err
	}

	stats := computeStats(results, maxParallelFor(params))
	e.report(progress.Completed(correlationID, "batch execution completed"))

	token := correlationID
	return protocol.BatchResult{
		Stats:            stats,
		Results:          results,
		CorrelationToken: &token,
	}, nil
}

func maxParallelFor(params protocol.BatchParams) uint32 {
	if params.ExecutionMode != protocol.BatchParallel {
		return 1
	}
	limit := defaultMaxParallel
	if params.MaxParallel != nil && *params.MaxParallel > 0 {
		limit = *params.MaxParallel
	}
	if limit > len(params.Requests) {
		limit = len(params.Requests)
	}
	if limit < 1 {
		limit = 1
	}
	return uint32(limit)
}

// runParallel executes every item concurrently, bounded by max_parallel,
// writing each result into its own pre-sized slot so ordering is preserved
// regardless of completion order.
func (e *Engine) runParallel(ctx context.Context, params protocol.BatchParams, correlationID string, caller security.SecurityContext) ([]protocol.BatchItemResult, error) {
	results := make([]protocol.BatchItemResult, len(params.Requests))
	limit := int(maxParallelFor(params))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	var completed int32
	var mu sync.Mutex

	for idx, item := range params.Requests {
		idx, item := idx, item
		group.Go(func() error {
			results[idx] = e.execute(gctx, item, caller)

			mu.Lock()
			completed++
			n := completed
			mu.Unlock()
			e.report(progress.InProgress(correlationID, "completed "+item.ID, int(n)))
			return nil
		})
	}
	_ = group.Wait() // per-item errors are carried in results, never propagated here

	return results, nil
}

// runSequential executes items in order. When the caller's metadata sets
// stop_on_error=true, the first failing item halts execution and every
// remaining item is recorded as skipped rather than attempted — unlike the
// source this is adapted from, which silently omits them (spec deviation,
// recorded as the recommended fix: len(results) == n stays an invariant).
func (e *Engine) runSequential(ctx context.Context, params protocol.BatchParams, correlationID string, caller security.SecurityContext) ([]protocol.BatchItemResult, error) {
	results := make([]protocol.BatchItemResult, len(params.Requests))
	stopOnError := caller.Client.Metadata["stop_on_error"] == "true"

	stopped := false
	for idx, item := range params.Requests {
		if stopped {
			results[idx] = protocol.BatchItemResult{ID: item.ID, Skipped: true}
			continue
		}

		results[idx] = e.execute(ctx, item, caller)
		e.report(progress.InProgress(correlationID, "completed "+item.ID, idx+1))

		if stopOnError && results[idx].Error != nil {
			stopped = true
		}
	}
	return results, nil
}

func (e *Engine) execute(ctx context.Context, item protocol.BatchItem, caller security.SecurityContext) protocol.BatchItemResult {
	if item.Method == string(protocol.MethodBatch) {
		return protocol.BatchItemResult{
			ID:    item.ID,
			Error: &protocol.JsonRpcError{Code: protocol.ErrInvalidRequest, Message: "Nested batch requests are not allowed"},
		}
	}

	start := time.Now()
	result, rpcErr := e.dispatch(ctx, item.Method, item.Params, caller)
	elapsed := time.Since(start).Milliseconds()

	if rpcErr != nil {
		return protocol.BatchItemResult{ID: item.ID, Error: rpcErr, ExecutionTimeMs: elapsed}
	}

	raw, err := encodeResult(result)
	if err != nil {
		return protocol.BatchItemResult{
			ID:              item.ID,
			Error:           &protocol.JsonRpcError{Code: protocol.ErrInternal, Message: "failed to encode result: " + err.Error()},
			ExecutionTimeMs: elapsed,
		}
	}
	return protocol.BatchItemResult{ID: item.ID, Result: raw, ExecutionTimeMs: elapsed}
}

func encodeResult(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

func computeStats(results []protocol.BatchItemResult, maxParallel uint32) protocol.BatchStats {
	stats := protocol.BatchStats{TotalRequests: uint32(len(results)), MaxParallelExecuted: maxParallel}
	var totalMs int64
	for _, r := range results {
		switch {
		case r.Skipped:
			stats.SkippedRequests++
		case r.Error != nil:
			stats.FailedRequests++
		default:
			stats.SuccessfulRequests++
		}
		totalMs += r.ExecutionTimeMs
	}
	stats.TotalExecutionTimeMs = totalMs
	if len(results) > 0 {
		stats.AverageExecutionTimeMs = float64(totalMs) / float64(len(results))
	}
	return stats
}
