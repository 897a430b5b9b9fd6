package types

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	// Model identifier as known to the server.
	// example: gpt-oss:120b-cloud
	Model string `json:"model" example:"gpt-oss:120b-cloud"`
	// Prompt text to generate a completion for.
	// example: Hello! Say hi in one sentence.
	Prompt string `json:"prompt" example:"Hello! Say hi in one sentence."`
	// Stream is always sent so that "stream": false reaches the server explicitly.
	Stream bool `json:"stream"`
}

// ChatMessage is a single turn in an OpenAI-compatible chat request.
type ChatMessage struct {
	// Role of the author: system, user or assistant.
	// example: user
	Role string `json:"role" example:"user"`
	// Text content of the message.
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// GenerateResponse is the non-streaming reply of POST /api/generate.
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	// Reason generation stopped, e.g. "stop".
	DoneReason string `json:"done_reason,omitempty"`
}

// ChatCompletionChoice is one choice of a chat completion.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token accounting for a chat completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the non-streaming reply of POST /v1/chat/completions.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   Usage                  `json:"usage"`
}

// ErrorResponse is the OpenAI-style error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the message and type of an API error.
type ErrorDetail struct {
	// Error message.
	// example: model "foo" not found
	Message string `json:"message" example:"model \"foo\" not found"`
	// example: invalid_request_error
	Type string `json:"type" example:"invalid_request_error"`
	// HTTP status code.
	// example: 404
	Code int `json:"code,omitempty" example:"404"`
}

// NativeError is the error body used by the native /api endpoints.
type NativeError struct {
	Error string `json:"error"`
}
