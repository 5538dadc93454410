package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Message represents a chat message
type Message struct {
	Role       string     `json:"role"` // "user", "assistant", "system", "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallId string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a function call made by the AI
type ToolCall struct {
	Index    int          `json:"index"`
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall represents a function call
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// Function represents a function definition
type Function struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Finished  bool       `json:"finished"`
	Error     error      `json:"error,omitempty"`
}

// StreamOptions contains options for streaming chat
type StreamOptions struct {
	MaxTokens   int        `json:"max_tokens,omitempty"`
	Temperature float64    `json:"temperature,omitempty"`
	Model       string     `json:"model,omitempty"`
	Functions   []Function `json:"functions,omitempty"`
}

// Provider is the language-model side of the assistant
type Provider interface {
	// Name returns the provider name
	Name() string

	// StreamChat streams a chat completion
	StreamChat(ctx context.Context, messages []Message, options StreamOptions) (<-chan StreamResponse, error)

	// Transcribe turns a recorded audio file into text
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Speech synthesizes spoken audio for text, returning MP3 bytes
	Speech(ctx context.Context, text string, voice string) ([]byte, error)
}

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider string
	Message  string
	Code     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// NewProviderError creates a new provider error
func NewProviderError(provider, message, code string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Code:     code,
	}
}

// ToolCallAssembler merges streamed tool-call deltas into complete
// calls. The first delta for an index carries the id and function
// name; later deltas append argument fragments.
type ToolCallAssembler struct {
	calls map[int]*ToolCall
	order []int
}

// NewToolCallAssembler creates an empty assembler
func NewToolCallAssembler() *ToolCallAssembler {
	return &ToolCallAssembler{calls: make(map[int]*ToolCall)}
}

// Add merges a batch of streamed deltas
func (a *ToolCallAssembler) Add(deltas []ToolCall) {
	for _, delta := range deltas {
		call, ok := a.calls[delta.Index]
		if !ok {
			call = &ToolCall{Index: delta.Index, Type: "function"}
			a.calls[delta.Index] = call
			a.order = append(a.order, delta.Index)
		}
		if delta.ID != "" {
			call.ID = delta.ID
		}
		if delta.Type != "" {
			call.Type = delta.Type
		}
		if delta.Function.Name != "" {
			call.Function.Name = delta.Function.Name
		}
		call.Function.Arguments += delta.Function.Arguments
	}
}

// Calls returns the assembled calls in stream order
func (a *ToolCallAssembler) Calls() []ToolCall {
	out := make([]ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		out = append(out, *a.calls[idx])
	}
	return out
}

// Len reports how many distinct calls have been seen
func (a *ToolCallAssembler) Len() int {
	return len(a.order)
}

// ProcessSSEStream parses an OpenAI-compatible SSE chat stream and
// emits StreamResponse chunks on responseChan.
func ProcessSSEStream(reader io.Reader, providerName string, responseChan chan<- StreamResponse) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			responseChan <- StreamResponse{Finished: true}
			return
		}

		var streamResp struct {
			Choices []struct {
				Delta struct {
					Content   string `json:"content"`
					ToolCalls []struct {
						Index    int    `json:"index"`
						ID       string `json:"id"`
						Type     string `json:"type"`
						Function struct {
							Name      string `json:"name"`
							Arguments string `json:"arguments"`
						} `json:"function"`
					} `json:"tool_calls"`
				} `json:"delta"`
				FinishReason *string `json:"finish_reason"`
			} `json:"choices"`
		}

		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			continue // Skip malformed JSON
		}

		if len(streamResp.Choices) == 0 {
			continue
		}
		choice := streamResp.Choices[0]

		if choice.Delta.Content != "" {
			responseChan <- StreamResponse{Content: choice.Delta.Content}
		}

		if len(choice.Delta.ToolCalls) > 0 {
			var toolCalls []ToolCall
			for _, tc := range choice.Delta.ToolCalls {
				toolCalls = append(toolCalls, ToolCall{
					Index: tc.Index,
					ID:    tc.ID,
					Type:  tc.Type,
					Function: FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			responseChan <- StreamResponse{ToolCalls: toolCalls}
		}

		if choice.FinishReason != nil {
			responseChan <- StreamResponse{Finished: true}
			return
		}
	}

	if err := scanner.Err(); err != nil {
		responseChan <- StreamResponse{
			Error: NewProviderError(providerName, "stream read error: "+err.Error(), "stream_error"),
		}
	}
}
