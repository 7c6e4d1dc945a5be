// Command mcpd runs a stdio-transport MCP server wired with the example
// tool, resource, and prompt surfaces. It exists to exercise every piece
// of this core end to end; production embedders are expected to assemble
// their own server.State instead of reusing BasicState directly.
package main

import (
	"context"
	"os"

	"github.com/mcpframework/core/internal/logger"
	"github.com/mcpframework/core/pkg/prompts"
	"github.com/mcpframework/core/pkg/registry"
	"github.com/mcpframework/core/pkg/resources"
	"github.com/mcpframework/core/pkg/server"
	"github.com/mcpframework/core/pkg/tools"
	"github.com/mcpframework/core/pkg/transport"
)

func main() {
	// The wire stream lives on stdout; logging must never share it.
	logger.SetLevel(logger.WARN)

	web := resources.NewWebRegistry()

	toolRegistry := registry.NewInMemoryToolRegistry()
	toolRegistry.Register(tools.CalculatorTool(), tools.HandleCalculatorTool)
	toolRegistry.Register(tools.HTMLToMarkdownTool(), tools.NewHTMLToMarkdownHandler(web))

	resourceRouter := resources.NewRouter()
	resourceRouter.RegisterScheme(web)
	resourceRouter.RegisterScheme(resources.NewDocsRegistry())

	promptRegistry := prompts.NewInMemoryPromptRegistry()
	promptRegistry.Register(prompts.NewWorkflowPrompt(
		"debug_failure",
		"Walks through triaging a failing build or test run",
		[]string{
			"Reproduce the failure locally and capture the exact error output.",
			"Identify the most recent change that could plausibly cause it.",
			"Form a hypothesis and find the smallest change that tests it.",
			"Apply the fix and confirm the original failure is gone.",
		},
		nil,
	))
	promptRegistry.Register(prompts.NewCodeAnalysisPrompt(
		"review_code",
		"Requests a structured review of a code snippet",
		"docs://snippet",
	))

	state := &server.BasicState{
		ToolRegistry:     toolRegistry,
		ResourceRegistry: resourceRouter,
		PromptRegistry:   promptRegistry,
		ServerInfo:       server.Info{Name: "mcpd", Version: "1.0.0"},
	}

	srv := server.New(state, server.WithName("mcpd"), server.WithVersion("1.0.0"), server.WithBatch(true, 100))

	if err := srv.Serve(context.Background(), transport.NewStdioTransport()); err != nil {
		logger.Error("server exited:", err)
		os.Exit(1)
	}
}
