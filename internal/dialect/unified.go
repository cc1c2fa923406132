package dialect

import (
	"encoding/json"
	"strings"
)

// Thinking effort levels shared by all dialects.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// UnifiedRequest is the canonical superset all inbound dialects normalize to.
// It is built fresh per request by an importer, has its Model field rewritten
// once after endpoint selection, and is consumed by exactly one exporter.
type UnifiedRequest struct {
	Model               string
	Messages            []UnifiedMessage
	MaxTokens           int
	MaxCompletionTokens int

	// Sampling parameters. Pointer fields distinguish "unset" from zero.
	Temperature      *float64
	TopP             *float64
	TopK             int
	N                int
	PresencePenalty  *float64
	FrequencyPenalty *float64

	Stream        bool
	StreamOptions *StreamOptions
	Stop          any

	Thinking *ThinkingConfig

	Tools      []Tool
	ToolChoice any

	ResponseFormat *ResponseFormat
	User           string

	// Extra preserves unrecognized top-level fields of OpenAI-shaped input
	// opaquely, so they can be re-emitted on OpenAI-compatible export.
	Extra map[string]json.RawMessage
}

// UnifiedMessage is a role plus content that is either a plain string or an
// ordered list of typed parts. A part list holding exactly one text part and
// nothing else is equivalent to the bare string form.
type UnifiedMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ThinkingConfig is the normalized thinking/reasoning directive.
type ThinkingConfig struct {
	Enabled bool
	Effort  string // low | medium | high
}

// StreamOptions carries stream sub-options.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// Tool is a function-style tool definition.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function exposed to the model.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ResponseFormat is the response-format directive.
type ResponseFormat struct {
	Type       string         `json:"type"`
	JSONSchema map[string]any `json:"json_schema,omitempty"`
}

// NormalizeContent reduces a part list containing exactly one text part to the
// equivalent bare string, and an empty part list to "". Multi-part content is
// returned unchanged.
func NormalizeContent(content any) any {
	arr, ok := content.([]any)
	if !ok {
		return content
	}
	if len(arr) == 0 {
		return ""
	}
	if len(arr) == 1 {
		if item, ok := arr[0].(map[string]any); ok {
			if t, _ := item["type"].(string); t == "text" {
				if text, ok := item["text"].(string); ok {
					return text
				}
			}
		}
	}
	return content
}

// TextOf flattens content to the concatenation of its text parts, in order.
// Non-text parts are dropped. Nil content yields "".
func TextOf(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, item := range v {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := part["type"].(string); t != "text" {
				continue
			}
			if text, ok := part["text"].(string); ok {
				b.WriteString(text)
			}
		}
		return b.String()
	default:
		return ""
	}
}

// Import detects the dialect of body and converts it to the unified form.
func Import(body []byte) (*UnifiedRequest, Format, error) {
	format, err := DetectFormat(body)
	if err != nil {
		return nil, "", err
	}

	var req *UnifiedRequest
	switch format {
	case FormatGemini:
		req, err = ImportGemini(body)
	case FormatClaude:
		req, err = ImportClaude(body)
	default:
		req, err = ImportOpenAI(body)
	}
	if err != nil {
		return nil, format, err
	}
	return req, format, nil
}

// Export emits the unified request in the target platform's dialect.
// Unknown platforms are exported as OpenAI-compatible.
func Export(req *UnifiedRequest, target Platform) ([]byte, error) {
	switch target {
	case PlatformDeepSeek:
		return ExportDeepSeek(req)
	case PlatformAnthropic:
		return ExportClaude(req)
	case PlatformGemini:
		return ExportGemini(req)
	default:
		return ExportOpenAI(req)
	}
}
