package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"
)

// Provider is the interface all LLM providers must implement
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a completion request and returns the full response
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Ping checks if the provider is reachable and the credentials work
	Ping(ctx context.Context) error
}

// CompletionRequest represents a request to the LLM
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	TopP        float64

	// JSON asks the provider to return a single JSON object. Providers
	// without a native JSON mode rely on the prompt alone.
	JSON bool
}

// Message represents a chat message
type Message struct {
	Role    string
	Content string
	Images  []Attachment
}

// Attachment is an inline image sent along with a message.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Base64 returns the attachment bytes in standard base64.
func (a Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURL returns the attachment as a data: URL.
func (a Attachment) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + a.Base64()
}

// CompletionResponse represents the full response
type CompletionResponse struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Usage tracks token usage
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewRequest creates a simple completion request
func NewRequest(model string, systemPrompt, userPrompt string) *CompletionRequest {
	return &CompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}

// splitSystem separates the system prompt from the conversation.
func splitSystem(msgs []Message) (string, []Message) {
	var system string
	var rest []Message
	for _, m := range msgs {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
	}
}
