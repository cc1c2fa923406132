package core

// ChatResponse is the OpenAI-shaped completion object relayed back to clients
// on the buffered path.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a single completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Message is a response message. Content is a string on the response path.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Model is a single entry in the /v1/models list. The ID is the
// client-visible group name, not a backend model identifier.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse is the /v1/models response envelope.
type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
