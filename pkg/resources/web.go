package resources

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/mcpframework/core/internal/logger"
	"github.com/mcpframework/core/pkg/mcperrors"
	"github.com/mcpframework/core/pkg/security"
)

// maxMarkdownLength truncates very large pages before they reach a client.
const maxMarkdownLength = 10000

// WebRegistry is a live, HTTP-backed Registry for the "web" scheme: a
// GetResource call fetches the URI over HTTP and returns its HTML content
// converted to Markdown. It exists to exercise the Registry interface
// against a real domain dependency instead of only the in-memory stub.
type WebRegistry struct {
	client *http.Client
}

// NewWebRegistry builds a registry with a client tuned like a browser
// (custom redirect cap, content-encoding aware) for fetching arbitrary pages.
func NewWebRegistry() *WebRegistry {
	return &WebRegistry{
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

func (w *WebRegistry) URIScheme() UriSchemeConfig {
	return UriSchemeConfig{
		Scheme:         "web",
		Description:    "Live HTTP resources fetched and converted to Markdown on read",
		SupportedTypes: []string{"text/markdown"},
	}
}

func (w *WebRegistry) ListResourceTemplates(_ security.SecurityContext) ([]Template, error) {
	return []Template{{
		URITemplate: "web://{host}/{path}",
		Name:        "Web page",
		Description: "Any HTTP(S) page, fetched live and converted to Markdown",
		MimeType:    "text/markdown",
	}}, nil
}

// toHTTPURL turns a "web://host/path" resource URI into the "https://host/path"
// it actually fetches.
func toHTTPURL(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "web" {
		return "", &mcperrors.InvalidResourceError{URI: uri, Message: "expected scheme 'web'"}
	}
	rest := strings.TrimPrefix(uri, "web://")
	return "https://" + rest, nil
}

func (w *WebRegistry) GetResource(uri string, _ security.SecurityContext) (Resource, error) {
	target, err := toHTTPURL(uri)
	if err != nil {
		return Resource{}, err
	}

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return Resource{}, &mcperrors.InvalidResourceError{URI: uri, Message: err.Error()}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; mcpframework/1.0)")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	logger.Info("fetching web resource", target)
	resp, err := w.client.Do(req)
	if err != nil {
		return Resource{}, &mcperrors.InternalError{Message: "fetch failed: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Resource{}, &mcperrors.InternalError{Message: fmt.Sprintf("fetch returned status %d", resp.StatusCode)}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return Resource{}, &mcperrors.InternalError{Message: err.Error()}
	}

	domain := parsed(target)
	markdown, err := htmltomarkdown.ConvertString(string(body), converter.WithDomain(domain))
	if err != nil {
		return Resource{}, &mcperrors.InternalError{Message: "markdown conversion failed: " + err.Error()}
	}
	if len(markdown) > maxMarkdownLength {
		markdown = markdown[:maxMarkdownLength] + "\n\n... (content truncated due to size)"
	}

	return Resource{
		URI:      uri,
		Name:     extractTitle(string(body)),
		MimeType: "text/markdown",
		Content:  Content{Kind: ContentText, Text: markdown, MimeType: "text/markdown"},
		Metadata: map[string]any{"source_url": target},
	}, nil
}

func (w *WebRegistry) ResourceExists(uri string, ctx security.SecurityContext) (bool, error) {
	target, err := toHTTPURL(uri)
	if err != nil {
		return false, err
	}
	resp, err := w.client.Head(target)
	if err != nil {
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (w *WebRegistry) SubscribeToResource(uri string, _ security.SecurityContext) (Subscription, error) {
	return Subscription{URI: uri, SubscriptionID: uuid.NewString()}, nil
}

func (w *WebRegistry) UnsubscribeFromResource(_ string, _ security.SecurityContext) error {
	return nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		reader = flate.NewReader(resp.Body)
		defer reader.Close()
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
		defer reader.Close()
	}
	return io.ReadAll(reader)
}

func parsed(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Scheme + "://" + u.Hostname()
}

func extractTitle(html string) string {
	start := strings.Index(html, "<title>")
	if start == -1 {
		return "Untitled"
	}
	start += len("<title>")
	end := strings.Index(html[start:], "</title>")
	if end == -1 {
		return "Untitled"
	}
	return strings.TrimSpace(html[start : start+end])
}
