package resources

import (
	"strings"
	"sync"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/security"
)

// Router delegates resource operations to the scheme-specific Registry
// that owns a given URI. Unlike the aggregator this is adapted from, Router
// does NOT implement Registry itself — URIScheme() has no single answer
// for a meta-registry, and the source's choice to implement the interface
// anyway and panic on that call is exactly the hazard this split avoids.
type Router struct {
	mu         sync.RWMutex
	registries map[string]Registry
}

// NewRouter creates an empty multi-scheme router.
func NewRouter() *Router {
	return &Router{registries: make(map[string]Registry)}
}

// RegisterScheme adds a child registry, keyed by its own scheme.
func (m *Router) RegisterScheme(r Registry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registries[r.URIScheme().Scheme] = r
}

// RegistryForURI extracts the scheme prefix from uri and returns its
// owning registry.
func (m *Router) RegistryForURI(uri string) (Registry, error) {
	pos := strings.Index(uri, "://")
	if pos < 0 {
		return nil, &mcperrors.InvalidResourceError{URI: uri, Message: "URI missing scheme"}
	}
	scheme := uri[:pos]

	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registries[scheme]
	if !ok {
		return nil, &mcperrors.InvalidResourceError{URI: uri, Message: "no registry found for scheme '" + scheme + "'"}
	}
	return r, nil
}

// SupportedSchemes lists every registered child's scheme configuration.
func (m *Router) SupportedSchemes() []UriSchemeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UriSchemeConfig, 0, len(m.registries))
	for _, r := range m.registries {
		out = append(out, r.URIScheme())
	}
	return out
}

// CanHandleURI reports whether some child registry owns uri's scheme.
func (m *Router) CanHandleURI(uri string) bool {
	_, err := m.RegistryForURI(uri)
	return err == nil
}

// ListResourceTemplates aggregates templates across every child registry.
func (m *Router) ListResourceTemplates(ctx security.SecurityContext) ([]Template, error) {
	m.mu.RLock()
	children := make([]Registry, 0, len(m.registries))
	for _, r := range m.registries {
		children = append(children, r)
	}
	m.mu.RUnlock()

	var all []Template
	for _, r := range children {
		templates, err := r.ListResourceTemplates(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, templates...)
	}
	return all, nil
}

// GetResource routes to the owning registry and delegates.
func (m *Router) GetResource(uri string, ctx security.SecurityContext) (Resource, error) {
	r, err := m.RegistryForURI(uri)
	if err != nil {
		return Resource{}, err
	}
	return r.GetResource(uri, ctx)
}

// ResourceExists routes to the owning registry and delegates.
func (m *Router) ResourceExists(uri string, ctx security.SecurityContext) (bool, error) {
	r, err := m.RegistryForURI(uri)
	if err != nil {
		return false, err
	}
	return r.ResourceExists(uri, ctx)
}

// SubscribeToResource routes to the owning registry and delegates.
func (m *Router) SubscribeToResource(uri string, ctx security.SecurityContext) (Subscription, error) {
	r, err := m.RegistryForURI(uri)
	if err != nil {
		return Subscription{}, err
	}
	return r.SubscribeToResource(uri, ctx)
}

// UnsubscribeFromResource tries every child in turn, since the owning
// scheme cannot always be derived from a subscription id alone.
func (m *Router) UnsubscribeFromResource(subscriptionID string, ctx security.SecurityContext) error {
	m.mu.RLock()
	children := make([]Registry, 0, len(m.registries))
	for _, r := range m.registries {
		children = append(children, r)
	}
	m.mu.RUnlock()

	for _, r := range children {
		if err := r.UnsubscribeFromResource(subscriptionID, ctx); err == nil {
			return nil
		}
	}
	return &mcperrors.InvalidResourceError{URI: "subscription:" + subscriptionID, Message: "subscription not found in any registry"}
}
