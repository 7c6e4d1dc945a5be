// Package security carries the authorization token threaded through every
// dispatcher call. A SecurityContext is an immutable value: no pointers to
// mutable state, cheap to copy, safe to share across goroutines.
package security

// ClientContext describes the connecting client and any metadata it
// attached during authentication (e.g. "stop_on_error" for batch requests).
type ClientContext struct {
	Name     string
	Version  string
	Metadata map[string]string
}

// SecurityContext is the per-request authorization token. is_system marks
// internal/privileged operations (tests, server-initiated calls); ordinary
// clients carry capabilities earned through authentication instead.
type SecurityContext struct {
	authenticated bool
	isSystem      bool
	capabilities  map[string]struct{}
	Client        ClientContext
}

// System returns a privileged context used for internal calls and tests.
func System() SecurityContext {
	return SecurityContext{
		authenticated: true,
		isSystem:      true,
		capabilities:  map[string]struct{}{"initialized": {}},
	}
}

// Anonymous returns an unauthenticated, uninitialized context.
func Anonymous() SecurityContext {
	return SecurityContext{
		capabilities: map[string]struct{}{},
		Client:       ClientContext{Metadata: map[string]string{}},
	}
}

// WithCapability returns a copy of ctx with the given capability granted.
func (c SecurityContext) WithCapability(capability string) SecurityContext {
	caps := make(map[string]struct{}, len(c.capabilities)+1)
	for k := range c.capabilities {
		caps[k] = struct{}{}
	}
	caps[capability] = struct{}{}
	c.capabilities = caps
	return c
}

// Authenticated reports whether the context has passed authentication.
func (c SecurityContext) Authenticated() bool { return c.authenticated }

// IsSystem reports whether this is a privileged, internally-originated context.
func (c SecurityContext) IsSystem() bool { return c.isSystem }

// HasCapability reports whether the context carries the named capability.
func (c SecurityContext) HasCapability(capability string) bool {
	if c.capabilities == nil {
		return false
	}
	_, ok := c.capabilities[capability]
	return ok
}

// Authenticator authenticates a connecting client and authorizes its
// actions. Implementations are external to this core (spec §1).
type Authenticator interface {
	Authenticate(client ClientContext) (SecurityContext, error)
	Authorize(ctx SecurityContext, resource, action string) bool
}
