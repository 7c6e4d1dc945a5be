package protocol

import "encoding/json"

// StandardMethod is the closed set of method strings the dispatcher
// understands natively. Anything else is a CustomMethod delegated to the
// server state's custom-method hook.
type StandardMethod string

const (
	MethodInitialize               StandardMethod = "initialize"
	MethodInitialized              StandardMethod = "initialized"
	MethodNotificationsInitialized StandardMethod = "notifications/initialized"
	MethodPing                     StandardMethod = "ping"
	MethodToolsList                StandardMethod = "tools/list"
	MethodToolsCall                StandardMethod = "tools/call"
	MethodResourcesList            StandardMethod = "resources/list"
	MethodResourcesRead            StandardMethod = "resources/read"
	MethodPromptsList              StandardMethod = "prompts/list"
	MethodPromptsGet               StandardMethod = "prompts/get"
	MethodBatch                    StandardMethod = "batch"
)

// standardMethods is the membership set used to classify an incoming
// method string as standard vs. custom.
var standardMethods = map[string]StandardMethod{
	string(MethodInitialize):              MethodInitialize,
	string(MethodInitialized):              MethodInitialized,
	string(MethodNotificationsInitialized): MethodNotificationsInitialized,
	string(MethodPing):                     MethodPing,
	string(MethodToolsList):                MethodToolsList,
	string(MethodToolsCall):                MethodToolsCall,
	string(MethodResourcesList):            MethodResourcesList,
	string(MethodResourcesRead):            MethodResourcesRead,
	string(MethodPromptsList):              MethodPromptsList,
	string(MethodPromptsGet):               MethodPromptsGet,
	string(MethodBatch):                    MethodBatch,
}

// ParseStandardMethod classifies a method string, returning ok=false for
// custom (non-standard) methods.
func ParseStandardMethod(method string) (StandardMethod, bool) {
	m, ok := standardMethods[method]
	return m, ok
}

// RequiresInitialization reports whether the method is gated behind the
// initialize handshake. initialize/initialized/ping are always allowed.
func (m StandardMethod) RequiresInitialization() bool {
	switch m {
	case MethodInitialize, MethodInitialized, MethodNotificationsInitialized, MethodPing:
		return false
	default:
		return true
	}
}

// ToolProperty describes one property of a tool's JSON-Schema input shape.
type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON-Schema-ish shape tools declare for their arguments.
type InputSchema struct {
	Type                 string                  `json:"type"`
	Properties           map[string]ToolProperty `json:"properties,omitempty"`
	Required             []string                `json:"required"`
	AdditionalProperties bool                    `json:"additionalProperties"`
}

// Tool is a named, invokable capability exposed over tools/call. Its
// execution behavior is opaque to this package (spec §3).
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// ToolsCallParams is the params of tools/call.
type ToolsCallParams struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments,omitempty"`
}

// ResourceContent is the tagged union of a resource's payload.
type ResourceContent struct {
	Type     string `json:"type"` // "text" | "blob"
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// Resource is the wire projection of a server-side resource or resource
// template, used by resources/list and resources/read.
type Resource struct {
	Name        string         `json:"name"`
	URI         string         `json:"uri"`
	Description string         `json:"description,omitempty"`
	MimeType    string         `json:"mimeType,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ResourcesListResult is the result of resources/list.
type ResourcesListResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

// ResourcesReadParams is the params of resources/read.
type ResourcesReadParams struct {
	URI string `json:"uri"`
}

// ResourcesReadResult is the result of resources/read.
type ResourcesReadResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ResourceAnnotation supplies context about an embedded resource to the model.
type ResourceAnnotation struct {
	Description string `json:"description"`
	Role        string `json:"role"`
}

// EmbeddedResource is a reference to a resource, inlined into a prompt message.
type EmbeddedResource struct {
	URI        string              `json:"uri"`
	MimeType   string              `json:"mimeType,omitempty"`
	Annotation *ResourceAnnotation `json:"annotation,omitempty"`
}

// PromptContent is a prompt message's content: either plain text or an
// embedded-resource reference with optional accompanying text.
type PromptContent struct {
	Type     string            `json:"type"` // "text" | "embedded_resource"
	Text     string            `json:"text,omitempty"`
	Resource *EmbeddedResource `json:"resource,omitempty"`
}

// PromptMessage is one message in a rendered or template prompt.
type PromptMessage struct {
	Role    string        `json:"role"` // system | user | assistant
	Content PromptContent `json:"content"`
}

// PromptParameter describes one declared template parameter.
type PromptParameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Schema      any    `json:"schema,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Prompt is a parameterized template of chat messages.
type Prompt struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	Parameters  []PromptParameter `json:"parameters"`
	Messages    []PromptMessage   `json:"messages"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// PromptCategory groups prompts for organizational purposes. Dangling
// names are permitted — this is a hint, not a referential-integrity contract.
type PromptCategory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Prompts     []string `json:"prompts"`
}

// GetPromptParams is the params of prompts/get.
type GetPromptParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// GetPromptResult is the rendered result of prompts/get.
type GetPromptResult struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptsListEntry is one entry of prompts/list.
type PromptsListEntry struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Arguments   []PromptParameter `json:"arguments,omitempty"`
}

// PromptsListResult is the result of prompts/list.
type PromptsListResult struct {
	Prompts []PromptsListEntry `json:"prompts"`
}

// InitializeParams is the params of initialize.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"clientInfo,omitempty"`
}

// InitializeResult is the result of initialize.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}

// BatchExecutionMode selects the batch engine's scheduling discipline.
// Dependency and PriorityDependency fold onto Sequential in this core
// (spec §4.2, §9).
type BatchExecutionMode string

const (
	BatchParallel           BatchExecutionMode = "parallel"
	BatchSequential         BatchExecutionMode = "sequential"
	BatchDependency         BatchExecutionMode = "dependency"
	BatchPriorityDependency BatchExecutionMode = "priority_dependency"
)

// BatchItem is one sub-request inside a batch call.
type BatchItem struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// BatchParams is the params of the batch method.
type BatchParams struct {
	Requests      []BatchItem        `json:"requests"`
	ExecutionMode BatchExecutionMode `json:"execution_mode"`
	MaxParallel   *int               `json:"max_parallel,omitempty"`
	TimeoutMs     *int64             `json:"timeout_ms,omitempty"`
}

// BatchItemResult is one sub-request's outcome.
type BatchItemResult struct {
	ID              string          `json:"id"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *JsonRpcError   `json:"error,omitempty"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	Skipped         bool            `json:"skipped"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

// BatchStats summarizes a batch run. successful + failed + skipped == total.
type BatchStats struct {
	TotalRequests          uint32  `json:"total_requests"`
	SuccessfulRequests     uint32  `json:"successful_requests"`
	FailedRequests         uint32  `json:"failed_requests"`
	SkippedRequests        uint32  `json:"skipped_requests"`
	TotalExecutionTimeMs   int64   `json:"total_execution_time_ms"`
	AverageExecutionTimeMs float64 `json:"average_execution_time_ms"`
	MaxParallelExecuted    uint32  `json:"max_parallel_executed"`
}

// BatchResult is the result of the batch method.
type BatchResult struct {
	Stats            BatchStats        `json:"stats"`
	Results          []BatchItemResult `json:"results"`
	CorrelationToken *string           `json:"correlation_token,omitempty"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}
