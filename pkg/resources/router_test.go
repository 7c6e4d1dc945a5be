package resources

import (
	"testing"

	"github.com/mcpframework/core/pkg/security"
)

func TestRouterDelegatesToOwningScheme(t *testing.T) {
	docs := NewInMemoryRegistry(UriSchemeConfig{Scheme: "docs"})
	docs.AddResource(Resource{URI: "docs://a", Name: "a", Content: Content{Kind: ContentText, Text: "hi"}})

	notes := NewInMemoryRegistry(UriSchemeConfig{Scheme: "notes"})
	notes.AddResource(Resource{URI: "notes://b", Name: "b", Content: Content{Kind: ContentText, Text: "bye"}})

	router := NewRouter()
	router.RegisterScheme(docs)
	router.RegisterScheme(notes)

	reg, err := router.RegistryForURI("notes://b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := reg.GetResource("notes://b", security.Anonymous())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content.Text != "bye" {
		t.Errorf("got %q, want %q", res.Content.Text, "bye")
	}
}

func TestRouterUnknownSchemeErrors(t *testing.T) {
	router := NewRouter()
	if _, err := router.RegistryForURI("ghost://x"); err == nil {
		t.Fatal("expected error for unregistered scheme")
	}
}

func TestRouterMissingSchemeSeparatorErrors(t *testing.T) {
	router := NewRouter()
	if _, err := router.RegistryForURI("not-a-uri"); err == nil {
		t.Fatal("expected error for URI missing a scheme")
	}
}

func TestSupportedSchemesListsEveryChild(t *testing.T) {
	router := NewRouter()
	router.RegisterScheme(NewInMemoryRegistry(UriSchemeConfig{Scheme: "docs"}))
	router.RegisterScheme(NewInMemoryRegistry(UriSchemeConfig{Scheme: "notes"}))

	schemes := router.SupportedSchemes()
	if len(schemes) != 2 {
		t.Errorf("expected 2 schemes, got %d", len(schemes))
	}
}
