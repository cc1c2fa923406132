package dialect

import (
	"bytes"
	"encoding/json"

	"modelgate/internal/core"
)

var jsonNull = []byte("null")

// ImportOpenAI converts an OpenAI-shaped request to the unified form.
// Known fields are decoded into typed slots; unrecognized top-level fields
// are preserved opaquely in the Extra bag. Presence, not zero value, decides
// whether optional sampling parameters are populated.
func ImportOpenAI(body []byte) (*UnifiedRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, core.NewConversionError("failed to parse OpenAI request", err)
	}

	req := &UnifiedRequest{}
	for key, raw := range fields {
		if bytes.Equal(raw, jsonNull) {
			continue
		}
		var err error
		switch key {
		case "model":
			err = json.Unmarshal(raw, &req.Model)
		case "messages":
			err = json.Unmarshal(raw, &req.Messages)
		case "max_tokens":
			err = decodeInt(raw, &req.MaxTokens)
		case "max_completion_tokens":
			err = decodeInt(raw, &req.MaxCompletionTokens)
		case "temperature":
			err = decodeFloatPtr(raw, &req.Temperature)
		case "top_p":
			err = decodeFloatPtr(raw, &req.TopP)
		case "top_k":
			err = decodeInt(raw, &req.TopK)
		case "n":
			err = decodeInt(raw, &req.N)
		case "presence_penalty":
			err = decodeFloatPtr(raw, &req.PresencePenalty)
		case "frequency_penalty":
			err = decodeFloatPtr(raw, &req.FrequencyPenalty)
		case "stream":
			err = json.Unmarshal(raw, &req.Stream)
		case "stream_options":
			err = json.Unmarshal(raw, &req.StreamOptions)
		case "stop":
			err = json.Unmarshal(raw, &req.Stop)
		case "reasoning_effort":
			var effort string
			if err = json.Unmarshal(raw, &effort); err == nil && effort != "" {
				req.Thinking = &ThinkingConfig{Enabled: true, Effort: effort}
			}
		case "tools":
			var tools []Tool
			if err = json.Unmarshal(raw, &tools); err == nil {
				for _, t := range tools {
					if t.Type == "function" {
						req.Tools = append(req.Tools, t)
					}
				}
			}
		case "tool_choice":
			err = json.Unmarshal(raw, &req.ToolChoice)
		case "response_format":
			err = json.Unmarshal(raw, &req.ResponseFormat)
		case "user":
			err = json.Unmarshal(raw, &req.User)
		default:
			if req.Extra == nil {
				req.Extra = make(map[string]json.RawMessage)
			}
			req.Extra[key] = raw
		}
		if err != nil {
			return nil, core.NewConversionError("failed to parse OpenAI request: invalid field "+key, err)
		}
	}

	return req, nil
}

// decodeInt coerces a JSON number to int.
func decodeInt(raw json.RawMessage, dst *int) error {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = int(v)
	return nil
}

// decodeFloatPtr decodes a JSON number into a freshly allocated float pointer.
func decodeFloatPtr(raw json.RawMessage, dst **float64) error {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

// exportMessages renders unified messages with normalized content.
func exportMessages(msgs []UnifiedMessage) []map[string]any {
	out := make([]map[string]any, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]any{
			"role":    m.Role,
			"content": NormalizeContent(m.Content),
		}
	}
	return out
}

// ExportOpenAI emits the unified request as an OpenAI chat-completion body.
// Unset optional fields are omitted entirely; the passthrough bag is
// re-emitted for keys the exporter did not already set.
func ExportOpenAI(req *UnifiedRequest) ([]byte, error) {
	out := map[string]any{
		"model":    req.Model,
		"messages": exportMessages(req.Messages),
	}

	if req.MaxTokens > 0 {
		out["max_tokens"] = req.MaxTokens
	}
	if req.MaxCompletionTokens > 0 {
		out["max_completion_tokens"] = req.MaxCompletionTokens
	}
	if req.Temperature != nil {
		out["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		out["top_p"] = *req.TopP
	}
	if req.N > 0 {
		out["n"] = req.N
	}
	if req.PresencePenalty != nil {
		out["presence_penalty"] = *req.PresencePenalty
	}
	if req.FrequencyPenalty != nil {
		out["frequency_penalty"] = *req.FrequencyPenalty
	}
	if req.Stream {
		out["stream"] = true
	}
	if req.StreamOptions != nil {
		out["stream_options"] = req.StreamOptions
	}
	if req.Stop != nil {
		out["stop"] = req.Stop
	}
	if len(req.Tools) > 0 {
		out["tools"] = req.Tools
	}
	if req.ToolChoice != nil {
		out["tool_choice"] = req.ToolChoice
	}
	if req.ResponseFormat != nil {
		out["response_format"] = req.ResponseFormat
	}
	if req.User != "" {
		out["user"] = req.User
	}
	if req.Thinking != nil && req.Thinking.Enabled {
		out["reasoning_effort"] = effortOrDefault(req.Thinking.Effort)
	}

	for k, v := range req.Extra {
		if _, set := out[k]; !set {
			out[k] = v
		}
	}

	return json.Marshal(out)
}

// ExportDeepSeek emits an OpenAI-compatible body with every message content
// forcibly flattened to plain text, since this dialect rejects structured
// content. Non-text parts are dropped.
func ExportDeepSeek(req *UnifiedRequest) ([]byte, error) {
	messages := make([]map[string]any, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = map[string]any{
			"role":    m.Role,
			"content": TextOf(m.Content),
		}
	}

	out := map[string]any{
		"model":    req.Model,
		"messages": messages,
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
	if req.PresencePenalty != nil {
		out["presence_penalty"] = *req.PresencePenalty
	}
	if req.FrequencyPenalty != nil {
		out["frequency_penalty"] = *req.FrequencyPenalty
	}
	if req.Stream {
		out["stream"] = true
	}
	if req.Stop != nil {
		out["stop"] = req.Stop
	}

	return json.Marshal(out)
}

// effortOrDefault returns the effort level, defaulting to medium.
func effortOrDefault(effort string) string {
	if effort == "" {
		return EffortMedium
	}
	return effort
}
