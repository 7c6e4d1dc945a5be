// Package prompts implements the prompt template engine and registry.
// Grounded directly on original_source/src/server/prompt.rs; the teacher's
// file-backed storage (~/.mcp/prompts/*.json) is replaced with an in-memory
// registry since nothing in this core needs prompts to survive a restart.
package prompts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/security"
)

// PromptRegistry is the dispatcher's view of the prompt surface.
type PromptRegistry interface {
	List(ctx security.SecurityContext) ([]protocol.PromptsListEntry, error)
	Get(name string, args map[string]any, ctx security.SecurityContext) (protocol.GetPromptResult, error)
}

// InMemoryPromptRegistry stores prompts keyed by name and renders them
// through a TemplateEngine on Get.
type InMemoryPromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]protocol.Prompt
	engine  TemplateEngine
}

// NewInMemoryPromptRegistry creates an empty registry using the minimal
// substitution engine.
func NewInMemoryPromptRegistry() *InMemoryPromptRegistry {
	return &InMemoryPromptRegistry{
		prompts: make(map[string]protocol.Prompt),
		engine:  NewSimpleTemplateEngine(),
	}
}

// Register adds or replaces a prompt.
func (r *InMemoryPromptRegistry) Register(p protocol.Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.Name] = p
}

func (r *InMemoryPromptRegistry) List(_ security.SecurityContext) ([]protocol.PromptsListEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.PromptsListEntry, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, protocol.PromptsListEntry{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   p.Parameters,
		})
	}
	return out, nil
}

// Get renders a prompt's description and messages against the supplied
// arguments. Arguments are coerced to strings for substitution purposes;
// an embedded_resource's accompanying text is substituted like any other
// text, but its resource reference itself passes through unchanged.
func (r *InMemoryPromptRegistry) Get(name string, args map[string]any, _ security.SecurityContext) (protocol.GetPromptResult, error) {
	r.mu.RLock()
	p, ok := r.prompts[name]
	r.mu.RUnlock()
	if !ok {
		return protocol.GetPromptResult{}, &mcperrors.PromptNotFoundError{Name: name}
	}

	strArgs := make(map[string]string, len(args))
	for k, v := range args {
		strArgs[k] = toStringArg(v)
	}

	if err := r.engine.ValidateArguments(p.Parameters, strArgs); err != nil {
		return protocol.GetPromptResult{}, err
	}

	rendered := make([]protocol.PromptMessage, len(p.Messages))
	for i, msg := range p.Messages {
		content := msg.Content
		switch content.Type {
		case "text":
			content.Text = r.engine.Substitute(content.Text, strArgs)
		case "embedded_resource":
			if content.Text != "" {
				content.Text = r.engine.Substitute(content.Text, strArgs)
			}
		}
		rendered[i] = protocol.PromptMessage{Role: msg.Role, Content: content}
	}

	return protocol.GetPromptResult{
		Name:        p.Name,
		Description: r.engine.Substitute(p.Description, strArgs),
		Messages:    rendered,
	}, nil
}

func toStringArg(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// NewWorkflowPrompt builds a multi-step workflow prompt: a system message
// framing the task followed by a user message carrying the step instructions.
func NewWorkflowPrompt(name, description string, steps []string, params []protocol.PromptParameter) protocol.Prompt {
	var b strings.Builder
	b.WriteString("Follow these steps:\n")
	for i, step := range steps {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(step)
		b.WriteString("\n")
	}
	instructions := b.String()
	return protocol.Prompt{
		Name:        name,
		Description: description,
		Version:     "1.0.0",
		Parameters:  params,
		Messages: []protocol.PromptMessage{
			{Role: "system", Content: protocol.PromptContent{Type: "text", Text: "You are executing a defined workflow. " + description}},
			{Role: "user", Content: protocol.PromptContent{Type: "text", Text: instructions}},
		},
	}
}

// NewCodeAnalysisPrompt builds a prompt that asks for a {{analysis_type}}
// review of the code at resourceURI, embedded as the user message's primary
// input. Ported from the original's add_code_analysis_prompt.
func NewCodeAnalysisPrompt(name, description, resourceURI string) protocol.Prompt {
	params := []protocol.PromptParameter{
		{
			Name:        "analysis_type",
			Description: "Type of analysis to perform (security, performance, style)",
			Required:    true,
			Schema: map[string]any{
				"type": "string",
				"enum": []string{"security", "performance", "style", "all"},
			},
		},
		{
			Name:        "focus_areas",
			Description: "Specific areas to focus on",
			Required:    false,
			Schema: map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			Default: []string{},
		},
	}
	messages := []protocol.PromptMessage{
		{Role: "system", Content: protocol.PromptContent{
			Type: "text",
			Text: "You are an expert code reviewer. Analyze the provided code and give detailed feedback based on the requested analysis type.",
		}},
		{Role: "user", Content: protocol.PromptContent{
			Type: "embedded_resource",
			Resource: &protocol.EmbeddedResource{
				URI:      resourceURI,
				MimeType: "text/plain",
				Annotation: &protocol.ResourceAnnotation{
					Description: "Source code to analyze",
					Role:        "primary_input",
				},
			},
			Text: "Please perform a {{analysis_type}} analysis of this code{{#if focus_areas}} focusing on: {{focus_areas}}{{/if}}. Provide specific recommendations.",
		}},
	}
	return protocol.Prompt{
		Name:        name,
		Description: description,
		Version:     "1.0.0",
		Parameters:  params,
		Messages:    messages,
		Metadata: map[string]any{
			"type":               "code_analysis",
			"resource_dependent": true,
		},
	}
}
