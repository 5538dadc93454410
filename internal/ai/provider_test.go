package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCallAssemblerSingleCall(t *testing.T) {
	assembler := NewToolCallAssembler()

	assembler.Add([]ToolCall{
		{
			Index: 0,
			ID:    "call_abc",
			Type:  "function",
			Function: FunctionCall{
				Name:      "set_timer",
				Arguments: `{"name":`,
			},
		},
	})
	assembler.Add([]ToolCall{
		{
			Index: 0,
			Function: FunctionCall{
				Arguments: `"tea","duration":"5m"}`,
			},
		},
	})

	calls := assembler.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_abc", calls[0].ID)
	assert.Equal(t, "set_timer", calls[0].Function.Name)
	assert.Equal(t, `{"name":"tea","duration":"5m"}`, calls[0].Function.Arguments)
}

func TestToolCallAssemblerMultipleCallsKeepOrder(t *testing.T) {
	assembler := NewToolCallAssembler()

	assembler.Add([]ToolCall{
		{Index: 0, ID: "call_1", Function: FunctionCall{Name: "mute"}},
	})
	assembler.Add([]ToolCall{
		{Index: 1, ID: "call_2", Function: FunctionCall{Name: "get_time", Arguments: "{"}},
	})
	assembler.Add([]ToolCall{
		{Index: 1, Function: FunctionCall{Arguments: "}"}},
	})

	calls := assembler.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "mute", calls[0].Function.Name)
	assert.Equal(t, "call_2", calls[1].ID)
	assert.Equal(t, "{}", calls[1].Function.Arguments)
	assert.Equal(t, 2, assembler.Len())
}

func TestProcessSSEStreamContent(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":" there"}}]}`,
		``,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	responseChan := make(chan StreamResponse, 10)
	ProcessSSEStream(strings.NewReader(stream), "openai", responseChan)
	close(responseChan)

	var content strings.Builder
	finished := false
	for resp := range responseChan {
		require.NoError(t, resp.Error)
		content.WriteString(resp.Content)
		if resp.Finished {
			finished = true
		}
	}

	assert.Equal(t, "Hello there", content.String())
	assert.True(t, finished)
}

func TestProcessSSEStreamToolCalls(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_xyz","type":"function","function":{"name":"get_clipboard","arguments":""}}]}}]}`,
		``,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{}"}}]}}]}`,
		``,
		`data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	responseChan := make(chan StreamResponse, 10)
	ProcessSSEStream(strings.NewReader(stream), "openai", responseChan)
	close(responseChan)

	assembler := NewToolCallAssembler()
	finished := false
	for resp := range responseChan {
		require.NoError(t, resp.Error)
		assembler.Add(resp.ToolCalls)
		if resp.Finished {
			finished = true
		}
	}

	require.True(t, finished)
	calls := assembler.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_xyz", calls[0].ID)
	assert.Equal(t, "get_clipboard", calls[0].Function.Name)
	assert.Equal(t, "{}", calls[0].Function.Arguments)
}

func TestProcessSSEStreamIgnoresMalformedLines(t *testing.T) {
	stream := strings.Join([]string{
		`: keep-alive comment`,
		`data: not json`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		`data: [DONE]`,
		``,
	}, "\n")

	responseChan := make(chan StreamResponse, 10)
	ProcessSSEStream(strings.NewReader(stream), "openai", responseChan)
	close(responseChan)

	var content strings.Builder
	for resp := range responseChan {
		require.NoError(t, resp.Error)
		content.WriteString(resp.Content)
	}
	assert.Equal(t, "ok", content.String())
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "openai", provider.Name())
	assert.Equal(t, "https://api.openai.com/v1", provider.config.Endpoint)
	assert.Equal(t, "gpt-4o", provider.config.DefaultModel)
	assert.Equal(t, 512, provider.config.MaxTokens)
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(ProviderConfig{})
	assert.Error(t, err)
}
