package server

import (
	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/prompts"
	"github.com/mcpframework/core/pkg/registry"
	"github.com/mcpframework/core/pkg/resources"
	"github.com/mcpframework/core/pkg/security"
)

// Info is the server identity advertised in initialize's result.
type Info struct {
	Name    string
	Version string
}

// State is the capability bundle an embedder supplies to the dispatcher.
// Resource and prompt registries are optional — a nil return means that
// surface is unsupported and the dispatcher reports it as such.
type State interface {
	Tools() registry.ToolRegistry
	Resources() resources.Source
	Prompts() prompts.PromptRegistry
	Authenticator() security.Authenticator
	Info() Info
	HandleCustomMethod(name string, params []byte, ctx security.SecurityContext) (any, error)
}

// BasicState is a State built from four concrete components, sufficient
// for a single-process embedder that doesn't need a custom-method hook.
type BasicState struct {
	ToolRegistry     registry.ToolRegistry
	ResourceRegistry resources.Source
	PromptRegistry   prompts.PromptRegistry
	Auth             security.Authenticator
	ServerInfo       Info
}

func (s *BasicState) Tools() registry.ToolRegistry          { return s.ToolRegistry }
func (s *BasicState) Resources() resources.Source           { return s.ResourceRegistry }
func (s *BasicState) Prompts() prompts.PromptRegistry       { return s.PromptRegistry }
func (s *BasicState) Authenticator() security.Authenticator { return s.Auth }
func (s *BasicState) Info() Info                            { return s.ServerInfo }

// HandleCustomMethod reports every custom method as not found; embedders
// needing custom methods should implement their own State instead.
func (s *BasicState) HandleCustomMethod(name string, _ []byte, _ security.SecurityContext) (any, error) {
	return nil, &mcperrors.MethodNotFoundError{Method: name}
}
