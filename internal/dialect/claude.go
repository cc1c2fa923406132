package dialect

import (
	"encoding/json"

	"modelgate/internal/core"
)

// Budget thresholds mapping Claude's thinking_budget onto effort levels.
// Export uses the inverse mapping.
const (
	claudeBudgetLow    = 1000
	claudeBudgetMedium = 10000
	claudeBudgetHigh   = 20000
)

// claudeRequest is the partial decode of a Claude-shaped request.
type claudeRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
	System          string  `json:"system,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"top_p,omitempty"`
	Stream          bool    `json:"stream,omitempty"`
	Stop            any     `json:"stop,omitempty"`
	ThinkingEnabled *bool   `json:"thinking_enabled,omitempty"`
	ThinkingBudget  int     `json:"thinking_budget,omitempty"`
	Tools           []struct {
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		InputSchema map[string]any `json:"input_schema,omitempty"`
	} `json:"tools,omitempty"`
}

// ImportClaude converts a Claude-shaped request to the unified form. The
// top-level system prompt becomes a synthetic leading system message.
func ImportClaude(body []byte) (*UnifiedRequest, error) {
	var in claudeRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, core.NewConversionError("failed to parse Claude request", err)
	}

	req := &UnifiedRequest{
		Model:     in.Model,
		MaxTokens: in.MaxTokens,
		Stream:    in.Stream,
		Stop:      in.Stop,
	}

	// Zero is indistinguishable from unset on this dialect.
	if in.Temperature > 0 {
		t := in.Temperature
		req.Temperature = &t
	}
	if in.TopP > 0 {
		p := in.TopP
		req.TopP = &p
	}

	if in.System != "" {
		req.Messages = append(req.Messages, UnifiedMessage{Role: "system", Content: in.System})
	}
	for _, msg := range in.Messages {
		req.Messages = append(req.Messages, UnifiedMessage{Role: msg.Role, Content: msg.Content})
	}

	if in.ThinkingEnabled != nil && *in.ThinkingEnabled {
		effort := EffortMedium
		if in.ThinkingBudget > 0 {
			switch {
			case in.ThinkingBudget <= claudeBudgetLow:
				effort = EffortLow
			case in.ThinkingBudget >= claudeBudgetHigh:
				effort = EffortHigh
			}
		}
		req.Thinking = &ThinkingConfig{Enabled: true, Effort: effort}
	}

	for _, tool := range in.Tools {
		req.Tools = append(req.Tools, Tool{
			Type: "function",
			Function: FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	return req, nil
}

// ExportClaude emits the unified request as a Claude-shaped body. The
// thinking directive maps back to thinking_enabled/thinking_budget using the
// inverse of the import thresholds.
func ExportClaude(req *UnifiedRequest) ([]byte, error) {
	out := map[string]any{
		"model":    req.Model,
		"messages": exportMessages(req.Messages),
	}

	if req.MaxTokens > 0 {
		out["max_tokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		out["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		out["top_p"] = *req.TopP
	}
	if req.Stream {
		out["stream"] = true
	}
	if req.Stop != nil {
		out["stop"] = req.Stop
	}

	if req.Thinking != nil && req.Thinking.Enabled {
		out["thinking_enabled"] = true
		budget := claudeBudgetMedium
		switch req.Thinking.Effort {
		case EffortLow:
			budget = claudeBudgetLow
		case EffortHigh:
			budget = claudeBudgetHigh
		}
		out["thinking_budget"] = budget
	}

	if len(req.Tools) > 0 {
		tools := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			tool := map[string]any{"name": t.Function.Name}
			if t.Function.Description != "" {
				tool["description"] = t.Function.Description
			}
			if t.Function.Parameters != nil {
				tool["input_schema"] = t.Function.Parameters
			}
			tools[i] = tool
		}
		out["tools"] = tools
	}

	return json.Marshal(out)
}
