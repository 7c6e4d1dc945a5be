package prompts

import (
	"strings"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/protocol"
)

// TemplateEngine renders a prompt's message content against supplied
// arguments and validates those arguments against the prompt's declared
// parameters.
type TemplateEngine interface {
	Substitute(content string, args map[string]string) string
	ValidateArguments(params []protocol.PromptParameter, args map[string]string) error
}

// SimpleTemplateEngine implements a deliberately minimal "{{name}}"
// placeholder grammar — no conditionals, no loops, no nested lookups.
// A construct like "{{#if x}}...{{/if}}" is left untouched: it does not
// match the placeholder pattern this engine recognizes, so it passes
// through literally rather than being partially evaluated.
type SimpleTemplateEngine struct{}

// NewSimpleTemplateEngine returns the minimal substitution engine.
func NewSimpleTemplateEngine() *SimpleTemplateEngine { return &SimpleTemplateEngine{} }

// Substitute replaces every "{{key}}" occurrence with args[key]. Unknown
// placeholders are left as-is so a caller can tell a missing argument
// from an empty one.
func (e *SimpleTemplateEngine) Substitute(content string, args map[string]string) string {
	result := content
	for key, value := range args {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ValidateArguments checks that every required parameter has a supplied
// argument. Only presence is checked: an empty string counts as supplied.
func (e *SimpleTemplateEngine) ValidateArguments(params []protocol.PromptParameter, args map[string]string) error {
	for _, p := range params {
		if !p.Required {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			return &mcperrors.ValidationError{Message: "missing required parameter: " + p.Name}
		}
	}
	return nil
}
