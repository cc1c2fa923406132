package dialect

import (
	"encoding/json"
	"strings"

	"modelgate/internal/core"
)

// geminiRequest is the partial decode of a Gemini-shaped request.
type geminiRequest struct {
	Model            string          `json:"model"`
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature,omitempty"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		TopP            float64 `json:"topP,omitempty"`
	} `json:"generationConfig,omitempty"`
	ThinkingConfig *struct {
		IncludeThoughts bool   `json:"includeThoughts,omitempty"`
		ThinkingEffort  string `json:"thinkingEffort,omitempty"`
	} `json:"thinkingConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text           string `json:"text,omitempty"`
	ExecutableCode *struct {
		Language string `json:"language,omitempty"`
		Code     string `json:"code,omitempty"`
	} `json:"executableCode,omitempty"`
}

// ImportGemini converts a Gemini-shaped request to the unified form. The
// "model" role maps to "assistant"; part lists holding only text collapse to
// a bare string, while text mixed with executable code is preserved as a
// multi-part sequence with the text part first. Sampling values map only
// when nonzero, since zero is indistinguishable from unset on this dialect.
func ImportGemini(body []byte) (*UnifiedRequest, error) {
	var in geminiRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, core.NewConversionError("failed to parse Gemini request", err)
	}

	req := &UnifiedRequest{
		Model:     in.Model,
		MaxTokens: in.GenerationConfig.MaxOutputTokens,
	}

	if in.GenerationConfig.Temperature > 0 {
		t := in.GenerationConfig.Temperature
		req.Temperature = &t
	}
	if in.GenerationConfig.TopP > 0 {
		p := in.GenerationConfig.TopP
		req.TopP = &p
	}

	if in.ThinkingConfig != nil && in.ThinkingConfig.IncludeThoughts {
		req.Thinking = &ThinkingConfig{
			Enabled: true,
			Effort:  effortOrDefault(in.ThinkingConfig.ThinkingEffort),
		}
	}

	for _, content := range in.Contents {
		role := content.Role
		if role == "model" {
			role = "assistant"
		}
		req.Messages = append(req.Messages, UnifiedMessage{
			Role:    role,
			Content: importGeminiParts(content.Parts),
		})
	}

	return req, nil
}

// importGeminiParts folds a Gemini part list into unified content.
func importGeminiParts(parts []geminiPart) any {
	var text strings.Builder
	var codeParts []any

	for _, part := range parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.ExecutableCode != nil {
			codeParts = append(codeParts, map[string]any{
				"type": "code",
				"code": part.ExecutableCode.Code,
			})
		}
	}

	if len(codeParts) == 0 {
		return text.String()
	}
	if text.Len() > 0 {
		return append([]any{map[string]any{"type": "text", "text": text.String()}}, codeParts...)
	}
	return codeParts
}

// geminiOutPart and friends are the emitted Gemini request shape.
type geminiOutPart struct {
	Text string `json:"text"`
}

type geminiOutContent struct {
	Role  string          `json:"role"`
	Parts []geminiOutPart `json:"parts"`
}

type geminiOutGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type geminiOutRequest struct {
	Contents         []geminiOutContent         `json:"contents"`
	GenerationConfig *geminiOutGenerationConfig `json:"generationConfig,omitempty"`
}

// ExportGemini emits the unified request as a Gemini-shaped body. The
// "assistant" role maps back to "model"; content is flattened to its text
// parts in order, dropping non-text parts. generationConfig is emitted only
// when at least one sampling parameter is present.
func ExportGemini(req *UnifiedRequest) ([]byte, error) {
	out := geminiOutRequest{
		Contents: make([]geminiOutContent, 0, len(req.Messages)),
	}

	if req.Temperature != nil || req.MaxTokens > 0 || req.TopP != nil || req.TopK > 0 {
		cfg := &geminiOutGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			TopK:            req.TopK,
		}
		if req.Temperature != nil {
			cfg.Temperature = *req.Temperature
		}
		if req.TopP != nil {
			cfg.TopP = *req.TopP
		}
		out.GenerationConfig = cfg
	}

	for _, msg := range req.Messages {
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		out.Contents = append(out.Contents, geminiOutContent{
			Role:  role,
			Parts: []geminiOutPart{{Text: TextOf(msg.Content)}},
		})
	}

	return json.Marshal(out)
}
