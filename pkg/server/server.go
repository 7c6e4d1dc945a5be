// Package server implements the protocol dispatcher: the method router
// that validates, parses, and routes JSON-RPC requests against the
// uninitialized -> initialized state machine, while carrying a
// SecurityContext through every call. Grounded directly on
// original_source/src/server/service.rs's McpServer<S>.
package server

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/mcpframework/core/internal/logger"
	"github.com/mcpframework/core/pkg/batch"
	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/progress"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/registry"
	"github.com/mcpframework/core/pkg/resources"
	"github.com/mcpframework/core/pkg/security"
	"github.com/mcpframework/core/pkg/transport"
)

// Server is the transport-agnostic JSON-RPC dispatcher. One Server can be
// driven by any number of Transport implementations; this core ships only
// the stdio one (pkg/transport).
type Server struct {
	config Config
	state  State
	health *Health

	reporter    *progress.Reporter
	batchEngine *batch.Engine

	// initialized tracks the single-connection handshake flag the stdio
	// transport relies on: once an "initialized" or "notifications/initialized"
	// notification arrives, every subsequent call is treated as initialized even if
	// its own SecurityContext doesn't carry the capability. Multi-connection
	// embedders that mint a fresh SecurityContext per client should rely on
	// WithCapability("initialized") instead and can ignore this flag.
	initialized atomic.Bool
}

// New builds a dispatcher around state, applying any options over the
// default configuration.
func New(state State, opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		config:   cfg,
		state:    state,
		health:   NewHealth(),
		reporter: progress.NewReporter(),
	}
	s.batchEngine = batch.NewEngine(s.dispatchForBatch, s.reporter)
	return s
}

// Health returns the server's health tracker, e.g. for an out-of-core
// status endpoint.
func (s *Server) Health() *Health { return s.health }

// Progress returns the shared progress reporter the batch engine reports
// through.
func (s *Server) Progress() *progress.Reporter { return s.reporter }

// Serve drives t's read/handle/write loop until ReadRequest returns an
// error (io.EOF on clean disconnect).
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	s.health.ConnectionOpened()
	defer s.health.ConnectionClosed()

	for {
		req, err := t.ReadRequest()
		if err != nil {
			return err
		}

		caller := security.Anonymous()
		if s.initialized.Load() {
			caller = caller.WithCapability("initialized")
		}
		resp := s.HandleRequest(ctx, req, caller)
		if resp == nil {
			continue
		}
		if err := t.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest never fails outward: every failure becomes a JSON-RPC
// error object in the returned response. A nil return means no response
// frame should be written (the request was a notification).
func (s *Server) HandleRequest(ctx context.Context, req *protocol.JsonRpcRequest, caller security.SecurityContext) *protocol.JsonRpcResponse {
	logger.Debug("dispatching", req.Method)

	method, isStandard := protocol.ParseStandardMethod(req.Method)
	if isStandard && method.RequiresInitialization() && !s.isInitialized(caller) {
		return s.errorOrNil(req, &mcperrors.NotInitializedError{})
	}

	result, err := s.dispatchMethod(ctx, req.Method, req.Params, caller)
	if req.ID == nil {
		return nil // notification: no response frame regardless of outcome
	}
	if err != nil {
		return s.errorOrNil(req, err)
	}

	resp, buildErr := protocol.NewResponse(result, req.ID)
	if buildErr != nil {
		return protocol.NewErrorResponse(protocol.ErrInternal, "failed to encode result: "+buildErr.Error(), nil, req.ID)
	}
	return resp
}

func (s *Server) isInitialized(caller security.SecurityContext) bool {
	return caller.IsSystem() || caller.HasCapability("initialized") || s.initialized.Load()
}

func (s *Server) errorOrNil(req *protocol.JsonRpcRequest, err error) *protocol.JsonRpcResponse {
	if req.ID == nil {
		return nil
	}
	return &protocol.JsonRpcResponse{JsonRPC: protocol.JsonRpcVersion, Error: toRPCError(err), ID: req.ID}
}

// toRPCError maps any mcperrors.Coded error onto its declared JSON-RPC
// code; anything else (a handler's plain error) becomes Internal so a
// stray error never leaks an undeclared code.
func toRPCError(err error) *protocol.JsonRpcError {
	if coded, ok := err.(mcperrors.Coded); ok {
		return &protocol.JsonRpcError{Code: coded.Code(), Message: coded.Error()}
	}
	return &protocol.JsonRpcError{Code: protocol.ErrInternal, Message: err.Error()}
}

// dispatchForBatch adapts dispatchMethod to the batch engine's Dispatch
// signature, re-entering the method router for each sub-request.
func (s *Server) dispatchForBatch(ctx context.Context, method string, params []byte, caller security.SecurityContext) (any, *protocol.JsonRpcError) {
	result, err := s.dispatchMethod(ctx, method, params, caller)
	if err != nil {
		return nil, toRPCError(err)
	}
	return result, nil
}

// dispatchMethod routes a single method call, standard or custom.
func (s *Server) dispatchMethod(ctx context.Context, methodStr string, raw json.RawMessage, caller security.SecurityContext) (any, error) {
	method, isStandard := protocol.ParseStandardMethod(methodStr)
	if !isStandard {
		return s.state.HandleCustomMethod(methodStr, raw, caller)
	}

	switch method {
	case protocol.MethodInitialize:
		return s.handleInitialize(raw)
	case protocol.MethodInitialized, protocol.MethodNotificationsInitialized:
		s.initialized.Store(true)
		return nil, nil
	case protocol.MethodPing:
		return map[string]string{"status": "pong"}, nil
	case protocol.MethodToolsList:
		return s.handleToolsList(caller)
	case protocol.MethodToolsCall:
		return s.handleToolsCall(raw, caller)
	case protocol.MethodResourcesList:
		return s.handleResourcesList(caller)
	case protocol.MethodResourcesRead:
		return s.handleResourcesRead(raw, caller)
	case protocol.MethodPromptsList:
		return s.handlePromptsList(caller)
	case protocol.MethodPromptsGet:
		return s.handlePromptsGet(raw, caller)
	case protocol.MethodBatch:
		return s.handleBatch(ctx, raw, caller)
	default:
		return nil, &mcperrors.MethodNotFoundError{Method: methodStr}
	}
}

func (s *Server) handleInitialize(raw json.RawMessage) (any, error) {
	var params protocol.InitializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, &mcperrors.ValidationError{Message: "invalid initialize params: " + err.Error()}
		}
	}
	if params.ProtocolVersion == "" {
		params.ProtocolVersion = "2024-11-05"
	}

	capabilities := map[string]any{}
	if s.state.Tools() != nil {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	if s.state.Resources() != nil {
		capabilities["resources"] = map[string]any{"listChanged": false, "subscribe": true}
	}
	if s.state.Prompts() != nil {
		capabilities["prompts"] = map[string]any{"listChanged": false}
	}
	if s.config.EnableBatch {
		capabilities["batch"] = map[string]any{"maxBatchSize": s.config.MaxBatchSize}
	}

	info := s.state.Info()
	result := protocol.InitializeResult{
		ProtocolVersion: params.ProtocolVersion,
		Capabilities:    capabilities,
	}
	result.ServerInfo.Name = info.Name
	result.ServerInfo.Version = info.Version
	return result, nil
}

func (s *Server) handleToolsList(caller security.SecurityContext) (any, error) {
	tools, err := s.state.Tools().List(caller)
	if err != nil {
		return nil, err
	}
	return protocol.ToolsListResult{Tools: tools}, nil
}

func (s *Server) handleToolsCall(raw json.RawMessage, caller security.SecurityContext) (any, error) {
	var params protocol.ToolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcperrors.ValidationError{Message: "invalid tools/call params: " + err.Error()}
	}
	if params.Name == "" {
		return nil, &mcperrors.ValidationError{Message: "tools/call requires a tool name"}
	}

	execCtx := registry.ExecutionContext{Security: caller, Arguments: params.Arguments}
	return s.state.Tools().Execute(params.Name, execCtx)
}

func (s *Server) handleResourcesList(caller security.SecurityContext) (any, error) {
	reg := s.state.Resources()
	if reg == nil {
		return nil, &mcperrors.ProtocolError{Message: "Resources not supported"}
	}
	templates, err := reg.ListResourceTemplates(caller)
	if err != nil {
		return nil, err
	}
	wire := make([]protocol.Resource, len(templates))
	for i, t := range templates {
		wire[i] = resources.TemplateToWire(t)
	}
	return protocol.ResourcesListResult{Resources: wire}, nil
}

func (s *Server) handleResourcesRead(raw json.RawMessage, caller security.SecurityContext) (any, error) {
	var params protocol.ResourcesReadParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcperrors.ValidationError{Message: "invalid resources/read params: " + err.Error()}
	}
	if params.URI == "" {
		return nil, &mcperrors.ValidationError{Message: "resources/read requires a uri"}
	}

	reg := s.state.Resources()
	if reg == nil {
		return nil, &mcperrors.ProtocolError{Message: "Resources not supported"}
	}
	res, err := reg.GetResource(params.URI, caller)
	if err != nil {
		return nil, err
	}
	content := resources.ContentToWire(res.URI, res.Content)
	return protocol.ResourcesReadResult{Contents: []protocol.ResourceContent{content}}, nil
}

func (s *Server) handlePromptsList(caller security.SecurityContext) (any, error) {
	reg := s.state.Prompts()
	if reg == nil {
		return nil, &mcperrors.ProtocolError{Message: "Prompts not supported"}
	}
	entries, err := reg.List(caller)
	if err != nil {
		return nil, err
	}
	return protocol.PromptsListResult{Prompts: entries}, nil
}

func (s *Server) handlePromptsGet(raw json.RawMessage, caller security.SecurityContext) (any, error) {
	var params protocol.GetPromptParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcperrors.ValidationError{Message: "invalid prompts/get params: " + err.Error()}
	}
	if params.Name == "" {
		return nil, &mcperrors.ValidationError{Message: "prompts/get requires a name"}
	}

	reg := s.state.Prompts()
	if reg == nil {
		return nil, &mcperrors.ProtocolError{Message: "Prompts not supported"}
	}
	return reg.Get(params.Name, params.Arguments, caller)
}

func (s *Server) handleBatch(ctx context.Context, raw json.RawMessage, caller security.SecurityContext) (any, error) {
	if !s.config.EnableBatch {
		return nil, &mcperrors.ProtocolError{Message: "Batch operations are not enabled"}
	}

	var params protocol.BatchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcperrors.ValidationError{Message: "invalid batch params: " + err.Error()}
	}
	if len(params.Requests) > s.config.MaxBatchSize {
		return nil, &mcperrors.ValidationError{Message: "batch exceeds configured max_batch_size"}
	}

	return s.batchEngine.Run(ctx, params, caller)
}
