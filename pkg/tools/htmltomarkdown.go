// Package tools holds example ToolRegistry handlers that exercise registry.ToolHandler
// end to end; concrete production tools remain external to the core (spec §1).
package tools

import (
	"fmt"

	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/registry"
	"github.com/mcpframework/core/pkg/resources"
)

// HTMLToMarkdownTool declares the "html_to_markdown" tool surfaced over tools/call.
func HTMLToMarkdownTool() protocol.Tool {
	return protocol.Tool{
		Name: "html_to_markdown",
		Description: "Fetches a URL and converts its HTML body to Markdown, " +
			"for summarizing or quoting a web page in a chat response.",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"url": {Type: "string", Description: "The URL to fetch, e.g. https://example.com/"},
			},
			Required: []string{"url"},
		},
	}
}

// NewHTMLToMarkdownHandler builds a ToolHandler backed by a WebRegistry,
// reusing the same live-fetch path the "web" resource scheme exposes.
func NewHTMLToMarkdownHandler(web *resources.WebRegistry) registry.ToolHandler {
	return func(ctx registry.ExecutionContext) (any, error) {
		args, ok := ctx.Arguments.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid arguments: expected an object with a 'url' field")
		}
		rawURL, ok := args["url"].(string)
		if !ok || rawURL == "" {
			return nil, fmt.Errorf("missing required argument: url")
		}

		uri := "web://" + trimScheme(rawURL)
		res, err := web.GetResource(uri, ctx.Security)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"markdown": res.Content.Text,
			"title":    res.Name,
			"url":      rawURL,
		}, nil
	}
}

func trimScheme(u string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(u) > len(prefix) && u[:len(prefix)] == prefix {
			return u[len(prefix):]
		}
	}
	return u
}
