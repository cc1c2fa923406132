package dialect

import (
	"github.com/tidwall/gjson"

	"modelgate/internal/core"
)

// Format classifies the dialect of an inbound request body.
type Format string

const (
	FormatOpenAI Format = "openai"
	FormatGemini Format = "gemini"
	FormatClaude Format = "claude"
)

// DetectFormat classifies an inbound JSON body. First match wins: a top-level
// "contents" array is Gemini; both "system" and "max_tokens" is Claude;
// anything else well-formed is OpenAI-compatible. Malformed JSON is a parse
// failure, never a silent default.
func DetectFormat(body []byte) (Format, error) {
	if !gjson.ValidBytes(body) {
		return "", core.NewBadRequestError("request body is not valid JSON", nil)
	}

	if gjson.GetBytes(body, "contents").Exists() {
		return FormatGemini, nil
	}
	if gjson.GetBytes(body, "system").Exists() && gjson.GetBytes(body, "max_tokens").Exists() {
		return FormatClaude, nil
	}
	return FormatOpenAI, nil
}

// IsStreamRequest reports whether an exported body requests streaming.
func IsStreamRequest(body []byte) bool {
	v := gjson.GetBytes(body, "stream")
	return v.Type == gjson.True
}
