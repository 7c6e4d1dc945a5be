package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/prompts"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/registry"
	"github.com/mcpframework/core/pkg/resources"
	"github.com/mcpframework/core/pkg/security"
)

func newTestState() *BasicState {
	tools := registry.NewInMemoryToolRegistry()
	tools.Register(protocol.Tool{Name: "echo"}, func(ctx registry.ExecutionContext) (any, error) {
		return ctx.Arguments, nil
	})

	docs := resources.NewInMemoryRegistry(resources.UriSchemeConfig{Scheme: "docs"})
	docs.AddResource(resources.Resource{
		URI:     "docs://a",
		Name:    "a",
		Content: resources.Content{Kind: resources.ContentText, Text: "hello"},
	})

	promptReg := prompts.NewInMemoryPromptRegistry()
	promptReg.Register(prompts.NewWorkflowPrompt("greet", "says hi", []string{"say hi to {{name}}"}, []protocol.PromptParameter{
		{Name: "name", Required: true},
	}))

	return &BasicState{
		ToolRegistry:     tools,
		ResourceRegistry: docs,
		PromptRegistry:   promptReg,
		ServerInfo:       Info{Name: "test-server", Version: "0.0.1"},
	}
}

func req(method string, params any, id any) *protocol.JsonRpcRequest {
	var raw json.RawMessage
	if params != nil {
		raw, _ = json.Marshal(params)
	}
	return &protocol.JsonRpcRequest{JsonRPC: protocol.JsonRpcVersion, Method: method, Params: raw, ID: id}
}

func TestInitializeThenToolCallSucceeds(t *testing.T) {
	srv := New(newTestState())
	ctx := context.Background()

	initResp := srv.HandleRequest(ctx, req("initialize", nil, 1), security.Anonymous())
	require.NotNil(t, initResp)
	require.Nil(t, initResp.Error)

	notifyResp := srv.HandleRequest(ctx, req("notifications/initialized", nil, nil), security.Anonymous())
	assert.Nil(t, notifyResp)

	callResp := srv.HandleRequest(ctx, req("tools/call", protocol.ToolsCallParams{Name: "echo", Arguments: map[string]any{"x": 1}}, 2), security.Anonymous())
	require.NotNil(t, callResp)
	assert.Nil(t, callResp.Error)
}

func TestToolCallBeforeInitializeFails(t *testing.T) {
	srv := New(newTestState())
	resp := srv.HandleRequest(context.Background(), req("tools/call", protocol.ToolsCallParams{Name: "echo"}, 1), security.Anonymous())
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcperrors.CodeNotInitialized, resp.Error.Code)
}

func TestSystemContextBypassesInitialization(t *testing.T) {
	srv := New(newTestState())
	resp := srv.HandleRequest(context.Background(), req("tools/list", nil, 1), security.System())
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	srv := New(newTestState())
	resp := srv.HandleRequest(context.Background(), req("nonsense", nil, 1), security.System())
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrMethodNotFound, resp.Error.Code)
}

func TestResourcesReadReturnsRegisteredContent(t *testing.T) {
	srv := New(newTestState())
	resp := srv.HandleRequest(context.Background(), req("resources/read", protocol.ResourcesReadParams{URI: "docs://a"}, 1), security.System())
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result protocol.ResourcesReadResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "hello", result.Contents[0].Text)
}

func TestResourcesUnsupportedWhenNil(t *testing.T) {
	state := newTestState()
	state.ResourceRegistry = nil
	srv := New(state)

	resp := srv.HandleRequest(context.Background(), req("resources/list", nil, 1), security.System())
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcperrors.CodeProtocol, resp.Error.Code)
}

func TestPromptsGetRendersTemplate(t *testing.T) {
	srv := New(newTestState())
	params := protocol.GetPromptParams{Name: "greet", Arguments: map[string]any{"name": "Ada"}}
	resp := srv.HandleRequest(context.Background(), req("prompts/get", params, 1), security.System())
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result protocol.GetPromptResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	found := false
	for _, msg := range result.Messages {
		if msg.Content.Text == "Follow these steps:\n1. say hi to Ada\n" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBatchRunsSubRequests(t *testing.T) {
	srv := New(newTestState())
	params := protocol.BatchParams{
		ExecutionMode: protocol.BatchSequential,
		Requests: []protocol.BatchItem{
			{ID: "1", Method: "tools/call", Params: mustJSON(t, protocol.ToolsCallParams{Name: "echo", Arguments: 1})},
			{ID: "2", Method: "ping"},
		},
	}
	resp := srv.HandleRequest(context.Background(), req("batch", params, 1), security.System())
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result protocol.BatchResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Results, 2)
	assert.Equal(t, uint32(2), result.Stats.SuccessfulRequests)
}

func TestBatchDisabledReturnsProtocolError(t *testing.T) {
	srv := New(newTestState(), WithBatch(false, 0))
	resp := srv.HandleRequest(context.Background(), req("batch", protocol.BatchParams{}, 1), security.System())
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcperrors.CodeProtocol, resp.Error.Code)
}

func TestNotificationNeverProducesResponse(t *testing.T) {
	srv := New(newTestState())
	resp := srv.HandleRequest(context.Background(), req("nonsense", nil, nil), security.System())
	assert.Nil(t, resp)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
