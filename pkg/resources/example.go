package resources

// NewDocsRegistry builds a small in-memory "docs" scheme registry seeded
// with example documentation and dataset resources, used by cmd/mcpd as a
// concrete Registry instance.
func NewDocsRegistry() *InMemoryRegistry {
	r := NewInMemoryRegistry(UriSchemeConfig{
		Scheme:         "docs",
		Description:    "Static documentation and dataset resources bundled with the server",
		SupportedTypes: []string{"text/markdown", "application/json"},
	})

	r.AddResource(Resource{
		URI:         "docs://mcp/overview",
		Name:        "example_documentation",
		Description: "Example documentation resource for MCP",
		MimeType:    "text/markdown",
		Content: Content{
			Kind:     ContentText,
			MimeType: "text/markdown",
			Text:     "# MCP Documentation\n\nThis is example documentation for the Model Context Protocol.",
		},
		Metadata: map[string]any{"version": "1.0.0", "topics": []string{"mcp", "protocol", "example"}},
	})

	r.AddResource(Resource{
		URI:         "docs://weather/current",
		Name:        "weather_data",
		Description: "Historical weather data resource",
		MimeType:    "application/json",
		Content: Content{
			Kind:     ContentText,
			MimeType: "application/json",
			Text:     `{"location":"San Francisco","temperature":72,"humidity":65,"conditions":"Partly Cloudy"}`,
		},
		Metadata: map[string]any{"regions": []string{"US", "Europe", "Asia"}, "timeRange": "2020-2025"},
	})

	r.AddTemplate(Template{
		URITemplate: "docs://{category}/{topic}",
		Name:        "Documentation entry",
		Description: "Any bundled documentation or dataset entry",
		MimeType:    "text/markdown",
	})

	return r
}
