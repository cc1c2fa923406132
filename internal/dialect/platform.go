// Package dialect implements detection and translation between vendor
// chat-completion wire formats and the gateway's unified request model.
package dialect

import "strings"

// Platform identifies the wire dialect a backend endpoint speaks.
type Platform string

const (
	PlatformOpenAI    Platform = "openai"
	PlatformDeepSeek  Platform = "deepseek"
	PlatformAnthropic Platform = "anthropic"
	PlatformGemini    Platform = "gemini"
	PlatformAzure     Platform = "azure"
	PlatformUnknown   Platform = "unknown"
)

// DetectPlatform resolves the outbound dialect for an endpoint. An explicit,
// case-insensitive platform hint always wins; absent a hint the base URL is
// matched against vendor keywords in a fixed priority order. No match yields
// PlatformUnknown, which exporters treat as OpenAI-compatible.
func DetectPlatform(baseURL, platform string) Platform {
	switch strings.ToLower(platform) {
	case "openai":
		return PlatformOpenAI
	case "deepseek":
		return PlatformDeepSeek
	case "anthropic", "claude":
		return PlatformAnthropic
	case "gemini", "google":
		return PlatformGemini
	case "azure":
		return PlatformAzure
	}

	lowerURL := strings.ToLower(baseURL)
	switch {
	case strings.Contains(lowerURL, "deepseek"):
		return PlatformDeepSeek
	case strings.Contains(lowerURL, "anthropic"), strings.Contains(lowerURL, "claude"):
		return PlatformAnthropic
	case strings.Contains(lowerURL, "gemini"), strings.Contains(lowerURL, "google"):
		return PlatformGemini
	case strings.Contains(lowerURL, "azure"):
		return PlatformAzure
	case strings.Contains(lowerURL, "openai"):
		return PlatformOpenAI
	}

	return PlatformUnknown
}
