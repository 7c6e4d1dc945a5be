// Package resources implements the resource registry abstraction:
// single-scheme registries, URI parsing, and a multi-scheme router.
// Grounded directly on original_source/src/server/resource.rs.
package resources

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/security"
)

// ContentKind tags a Resource's payload variant.
type ContentKind string

const (
	ContentText ContentKind = "text"
	ContentBlob ContentKind = "blob"
)

// Content is the tagged union of a resource's payload.
type Content struct {
	Kind     ContentKind
	Text     string
	Blob     string
	MimeType string
}

// Resource is the server-side representation of an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Content     Content
	Metadata    map[string]any
}

// Template describes a resource template for listing purposes — same
// shape as Resource minus Content, with a URI template holding
// "{placeholder}" segments.
type Template struct {
	URITemplate string
	Name        string
	Description string
	MimeType    string
	Metadata    map[string]any
}

// Subscription is returned by SubscribeToResource.
type Subscription struct {
	URI            string
	SubscriptionID string
}

// UriSchemeConfig names and describes a single URI scheme a registry owns.
type UriSchemeConfig struct {
	Scheme         string
	Description    string
	SupportedTypes []string
}

// MatchesURI reports whether uri begins with "<scheme>://".
func (c UriSchemeConfig) MatchesURI(uri string) bool {
	return strings.HasPrefix(uri, c.Scheme+"://")
}

// ParsedUri exposes the components of a parsed resource URI.
type ParsedUri struct {
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// PathSegments splits Path on '/', dropping empty segments.
func (p ParsedUri) PathSegments() []string {
	var segs []string
	for _, s := range strings.Split(p.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// QueryParams decodes Query into key/value pairs; later pairs win on
// duplicate keys.
func (p ParsedUri) QueryParams() map[string]string {
	params := make(map[string]string)
	if p.Query == "" {
		return params
	}
	values, err := url.ParseQuery(p.Query)
	if err != nil {
		return params
	}
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[len(vs)-1]
		}
	}
	return params
}

// ParseURI parses uri and verifies it belongs to c's scheme.
func (c UriSchemeConfig) ParseURI(uri string) (ParsedUri, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return ParsedUri{}, &mcperrors.InvalidResourceError{URI: uri, Message: "invalid URI format: " + err.Error()}
	}
	if u.Scheme != c.Scheme {
		return ParsedUri{}, &mcperrors.InvalidResourceError{
			URI:     uri,
			Message: "expected scheme '" + c.Scheme + "', got '" + u.Scheme + "'",
		}
	}
	return ParsedUri{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}, nil
}

// Source is the dispatcher-facing resource contract: everything a caller
// needs to list, read, and subscribe to resources, without committing to a
// single scheme. Both a single-scheme Registry and the multi-scheme Router
// satisfy it — the dispatcher (pkg/server) only ever depends on Source.
type Source interface {
	ListResourceTemplates(ctx security.SecurityContext) ([]Template, error)
	GetResource(uri string, ctx security.SecurityContext) (Resource, error)
	ResourceExists(uri string, ctx security.SecurityContext) (bool, error)
	SubscribeToResource(uri string, ctx security.SecurityContext) (Subscription, error)
	UnsubscribeFromResource(subscriptionID string, ctx security.SecurityContext) error
}

// Registry is the single-scheme resource registry contract (spec §4.4).
type Registry interface {
	URIScheme() UriSchemeConfig
	Source
}

// CanHandleURI defaults to scheme matching; registries may override this
// behavior by not embedding it, but none here need to.
func CanHandleURI(r Registry, uri string) bool {
	return r.URIScheme().MatchesURI(uri)
}

// InMemoryRegistry is a fixed single-scheme registry backed by maps.
type InMemoryRegistry struct {
	mu            sync.RWMutex
	scheme        UriSchemeConfig
	resources     map[string]Resource
	templates     []Template
	subscriptions map[string]Subscription
}

// NewInMemoryRegistry creates a registry for the given scheme.
func NewInMemoryRegistry(scheme UriSchemeConfig) *InMemoryRegistry {
	return &InMemoryRegistry{
		scheme:        scheme,
		resources:     make(map[string]Resource),
		subscriptions: make(map[string]Subscription),
	}
}

// AddResource registers a resource, keyed by its URI (unique per spec §3).
func (r *InMemoryRegistry) AddResource(res Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[res.URI] = res
}

// AddTemplate registers a resource template for listing.
func (r *InMemoryRegistry) AddTemplate(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, t)
}

func (r *InMemoryRegistry) URIScheme() UriSchemeConfig { return r.scheme }

func (r *InMemoryRegistry) ListResourceTemplates(_ security.SecurityContext) ([]Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out, nil
}

func (r *InMemoryRegistry) GetResource(uri string, _ security.SecurityContext) (Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[uri]
	if !ok {
		return Resource{}, &mcperrors.ResourceNotFoundError{URI: uri}
	}
	return res, nil
}

func (r *InMemoryRegistry) ResourceExists(uri string, _ security.SecurityContext) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resources[uri]
	return ok, nil
}

func (r *InMemoryRegistry) SubscribeToResource(uri string, _ security.SecurityContext) (Subscription, error) {
	sub := Subscription{URI: uri, SubscriptionID: uuid.NewString()}
	r.mu.Lock()
	r.subscriptions[sub.SubscriptionID] = sub
	r.mu.Unlock()
	return sub, nil
}

func (r *InMemoryRegistry) UnsubscribeFromResource(subscriptionID string, _ security.SecurityContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscriptions, subscriptionID)
	return nil
}

// TemplateToWire projects a Template into the wire Resource shape used by
// resources/list (uri_template becomes the "uri" field, per spec §4.1).
func TemplateToWire(t Template) protocol.Resource {
	return protocol.Resource{
		Name:        t.Name,
		URI:         t.URITemplate,
		Description: t.Description,
		MimeType:    t.MimeType,
		Metadata:    t.Metadata,
	}
}

// ContentToWire maps the server-side content variant to the wire variant,
// attaching the owning resource's URI.
func ContentToWire(uri string, c Content) protocol.ResourceContent {
	switch c.Kind {
	case ContentBlob:
		return protocol.ResourceContent{Type: "blob", URI: uri, MimeType: c.MimeType, Blob: c.Blob}
	default:
		return protocol.ResourceContent{Type: "text", URI: uri, MimeType: c.MimeType, Text: c.Text}
	}
}
