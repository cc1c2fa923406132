package dialect

import (
	"encoding/json"
	"testing"
)

func float64Ptr(v float64) *float64 { return &v }

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("exported body is not valid JSON: %v", err)
	}
	return out
}

func TestExportOpenAI(t *testing.T) {
	req := &UnifiedRequest{
		Model: "gpt-4o-mini",
		Messages: []UnifiedMessage{
			{Role: "user", Content: []any{map[string]any{"type": "text", "text": "hi"}}},
		},
		MaxTokens:   256,
		Temperature: float64Ptr(0),
		Thinking:    &ThinkingConfig{Enabled: true},
		Extra: map[string]json.RawMessage{
			"seed":  json.RawMessage("42"),
			"model": json.RawMessage(`"smuggled"`),
		},
	}

	body, err := ExportOpenAI(req)
	if err != nil {
		t.Fatalf("ExportOpenAI returned error: %v", err)
	}
	out := decode(t, body)

	if out["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, known fields must win over the passthrough bag", out["model"])
	}
	if out["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", out["max_tokens"])
	}
	if out["temperature"] != float64(0) {
		t.Errorf("set temperature 0 must be emitted, got %v", out["temperature"])
	}
	if _, present := out["top_p"]; present {
		t.Error("unset top_p must be omitted")
	}
	if _, present := out["stream"]; present {
		t.Error("stream false must be omitted")
	}
	if out["reasoning_effort"] != EffortMedium {
		t.Errorf("reasoning_effort = %v, want default medium", out["reasoning_effort"])
	}
	if out["seed"] != float64(42) {
		t.Errorf("passthrough seed = %v", out["seed"])
	}

	// Single-text-part content collapses to the bare string.
	msgs := out["messages"].([]any)
	if msgs[0].(map[string]any)["content"] != "hi" {
		t.Errorf("content = %v", msgs[0].(map[string]any)["content"])
	}
}

func TestExportDeepSeekFlattensContent(t *testing.T) {
	req := &UnifiedRequest{
		Model: "deepseek-chat",
		Messages: []UnifiedMessage{
			{Role: "user", Content: []any{
				map[string]any{"type": "text", "text": "first "},
				map[string]any{"type": "image_url", "image_url": map[string]any{"url": "http://x"}},
				map[string]any{"type": "text", "text": "second"},
			}},
		},
		Tools:    []Tool{{Type: "function", Function: FunctionDefinition{Name: "f"}}},
		Thinking: &ThinkingConfig{Enabled: true, Effort: EffortHigh},
	}

	body, err := ExportDeepSeek(req)
	if err != nil {
		t.Fatalf("ExportDeepSeek returned error: %v", err)
	}
	out := decode(t, body)

	msgs := out["messages"].([]any)
	content := msgs[0].(map[string]any)["content"]
	if content != "first second" {
		t.Errorf("content = %v, want concatenated text parts", content)
	}
	if _, present := out["tools"]; present {
		t.Error("tools must not be emitted on this dialect")
	}
	if _, present := out["reasoning_effort"]; present {
		t.Error("reasoning extras must not be emitted on this dialect")
	}
}

func TestExportClaudeThinkingBudget(t *testing.T) {
	tests := []struct {
		effort string
		want   float64
	}{
		{EffortLow, 1000},
		{EffortMedium, 10000},
		{EffortHigh, 20000},
		{"", 10000},
	}

	for _, tt := range tests {
		req := &UnifiedRequest{
			Model:    "claude-3-5-sonnet",
			Thinking: &ThinkingConfig{Enabled: true, Effort: tt.effort},
		}
		body, err := ExportClaude(req)
		if err != nil {
			t.Fatalf("ExportClaude returned error: %v", err)
		}
		out := decode(t, body)
		if out["thinking_enabled"] != true {
			t.Errorf("effort %q: thinking_enabled = %v", tt.effort, out["thinking_enabled"])
		}
		if out["thinking_budget"] != tt.want {
			t.Errorf("effort %q: thinking_budget = %v, want %v", tt.effort, out["thinking_budget"], tt.want)
		}
	}
}

func TestExportClaudeTools(t *testing.T) {
	req := &UnifiedRequest{
		Model: "claude-3-5-sonnet",
		Tools: []Tool{{
			Type: "function",
			Function: FunctionDefinition{
				Name:        "search",
				Description: "web search",
				Parameters:  map[string]any{"type": "object"},
			},
		}},
	}

	body, err := ExportClaude(req)
	if err != nil {
		t.Fatalf("ExportClaude returned error: %v", err)
	}
	out := decode(t, body)

	tools := out["tools"].([]any)
	tool := tools[0].(map[string]any)
	if tool["name"] != "search" || tool["description"] != "web search" {
		t.Errorf("tool = %+v", tool)
	}
	if _, present := tool["input_schema"]; !present {
		t.Error("input_schema missing")
	}
}

func TestExportGemini(t *testing.T) {
	req := &UnifiedRequest{
		Model: "gemini-pro",
		Messages: []UnifiedMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: []any{
				map[string]any{"type": "text", "text": "hel"},
				map[string]any{"type": "text", "text": "lo"},
			}},
		},
		MaxTokens: 64,
		TopK:      40,
	}

	body, err := ExportGemini(req)
	if err != nil {
		t.Fatalf("ExportGemini returned error: %v", err)
	}
	out := decode(t, body)

	contents := out["contents"].([]any)
	second := contents[1].(map[string]any)
	if second["role"] != "model" {
		t.Errorf("assistant role should map to model, got %v", second["role"])
	}
	parts := second["parts"].([]any)
	if parts[0].(map[string]any)["text"] != "hello" {
		t.Errorf("parts = %+v, want concatenated text", parts)
	}

	cfg := out["generationConfig"].(map[string]any)
	if cfg["maxOutputTokens"] != float64(64) || cfg["topK"] != float64(40) {
		t.Errorf("generationConfig = %+v", cfg)
	}
}

func TestExportGeminiOmitsEmptyGenerationConfig(t *testing.T) {
	req := &UnifiedRequest{
		Model:    "gemini-pro",
		Messages: []UnifiedMessage{{Role: "user", Content: "hi"}},
	}

	body, err := ExportGemini(req)
	if err != nil {
		t.Fatalf("ExportGemini returned error: %v", err)
	}
	out := decode(t, body)

	if _, present := out["generationConfig"]; present {
		t.Error("generationConfig must be omitted when no sampling parameter is set")
	}
}

func TestExportDispatchUnknownPlatform(t *testing.T) {
	req := &UnifiedRequest{
		Model:    "local-model",
		Messages: []UnifiedMessage{{Role: "user", Content: "hi"}},
	}

	body, err := Export(req, PlatformUnknown)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	out := decode(t, body)
	if out["model"] != "local-model" {
		t.Errorf("unknown platform should export OpenAI-compatible, got %+v", out)
	}
}

func TestNormalizeContent(t *testing.T) {
	singleText := []any{map[string]any{"type": "text", "text": "hi"}}
	if got := NormalizeContent(singleText); got != "hi" {
		t.Errorf("single text part = %v, want bare string", got)
	}
	if got := NormalizeContent([]any{}); got != "" {
		t.Errorf("empty list = %v, want empty string", got)
	}
	if got := NormalizeContent("plain"); got != "plain" {
		t.Errorf("string = %v", got)
	}
	multi := []any{
		map[string]any{"type": "text", "text": "a"},
		map[string]any{"type": "text", "text": "b"},
	}
	if _, ok := NormalizeContent(multi).([]any); !ok {
		t.Error("multi-part content must pass through unchanged")
	}
}

func TestOpenAIRoundTrip(t *testing.T) {
	inbound := `{
		"model": "my-group",
		"messages": [
			{"role": "system", "content": "be brief"},
			{"role": "user", "content": [{"type": "text", "text": "hi"}]}
		],
		"max_tokens": 100,
		"temperature": 0.2,
		"stream": true,
		"seed": 7
	}`

	req, _, err := Import([]byte(inbound))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	req.Model = "gpt-4o-mini"

	body, err := Export(req, PlatformOpenAI)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	out := decode(t, body)

	if out["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", out["model"])
	}
	if out["stream"] != true {
		t.Errorf("stream = %v", out["stream"])
	}
	if out["seed"] != float64(7) {
		t.Errorf("seed = %v, passthrough field lost", out["seed"])
	}
	msgs := out["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[1].(map[string]any)["content"] != "hi" {
		t.Errorf("user content = %v", msgs[1].(map[string]any)["content"])
	}
}
