// Package registry holds the ToolRegistry contract and an in-memory
// reference implementation used by the example server and its tests.
// Concrete production tools remain out of scope for this core (spec §1);
// this package only needs enough to exercise tools/list and tools/call.
package registry

import (
	"sync"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/security"
)

// ExecutionContext bundles everything a tool handler needs to run:
// the caller's SecurityContext plus the call arguments.
type ExecutionContext struct {
	Security  security.SecurityContext
	Arguments any
}

// ToolHandler executes a tool call and returns its result.
type ToolHandler func(ctx ExecutionContext) (any, error)

// ToolRegistry is the dispatcher's view of the tool surface. Authorization
// is the registry's own responsibility — the dispatcher neither filters
// List nor pre-checks Execute (spec §4.5).
type ToolRegistry interface {
	List(ctx security.SecurityContext) ([]protocol.Tool, error)
	Execute(name string, ctx ExecutionContext) (any, error)
}

// InMemoryToolRegistry is a flat name->handler map guarded by a mutex,
// generalized from the teacher's Server.tools/Server.handlers pair.
type InMemoryToolRegistry struct {
	mu       sync.RWMutex
	tools    []protocol.Tool
	handlers map[string]ToolHandler
}

// NewInMemoryToolRegistry creates an empty registry.
func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{handlers: make(map[string]ToolHandler)}
}

// Register adds a tool definition and its handler.
func (r *InMemoryToolRegistry) Register(tool protocol.Tool, handler ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append(r.tools, tool)
	r.handlers[tool.Name] = handler
}

func (r *InMemoryToolRegistry) List(_ security.SecurityContext) ([]protocol.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Tool, len(r.tools))
	copy(out, r.tools)
	return out, nil
}

func (r *InMemoryToolRegistry) Execute(name string, ctx ExecutionContext) (any, error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &mcperrors.ToolNotFoundError{Name: name}
	}
	return handler(ctx)
}
