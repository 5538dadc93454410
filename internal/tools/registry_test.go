package tools

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

func newTestRegistry() *Registry {
	logger := logging.NewLogger("error")
	logger.SetOutput(io.Discard)
	return NewRegistry(logger)
}

func echoTool(name string) Tool {
	return Tool{
		Definition: ai.Function{
			Name:        name,
			Description: "echoes its text argument",
			Parameters: objectSchema(map[string]interface{}{
				"text": map[string]interface{}{"type": "string"},
			}, "text"),
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return "", err
			}
			return text, nil
		},
	}
}

func TestRegistryRegisterAndDispatch(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	result := r.Dispatch(context.Background(), "echo", `{"text":"hello"}`)
	assert.Equal(t, "hello", result)
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(echoTool("echo")))
	assert.Error(t, r.Register(echoTool("echo")))
}

func TestRegistryRejectsIncompleteTools(t *testing.T) {
	r := newTestRegistry()
	assert.Error(t, r.Register(Tool{Definition: ai.Function{Name: "no_handler"}}))
	assert.Error(t, r.Register(Tool{Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
		return "", nil
	}}))
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := newTestRegistry()
	result := r.Dispatch(context.Background(), "nonexistent", "{}")
	assert.Contains(t, result, "unknown tool")
}

func TestRegistryDispatchBadArguments(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	result := r.Dispatch(context.Background(), "echo", `{not json`)
	assert.Contains(t, result, "invalid arguments")

	result = r.Dispatch(context.Background(), "echo", `{}`)
	assert.Contains(t, result, "missing required argument")
}

func TestRegistryDispatchHandlerError(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(Tool{
		Definition: ai.Function{Name: "boom"},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", fmt.Errorf("it broke")
		},
	}))

	result := r.Dispatch(context.Background(), "boom", "{}")
	assert.Equal(t, "Error: it broke", result)
}

func TestRegistryDispatchEmptyResultBecomesOK(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(Tool{
		Definition: ai.Function{Name: "quiet"},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", nil
		},
	}))

	assert.Equal(t, "OK", r.Dispatch(context.Background(), "quiet", ""))
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(echoTool("zebra")))
	require.NoError(t, r.Register(echoTool("alpha")))

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zebra", defs[1].Name)
}

func TestNumberArg(t *testing.T) {
	args := map[string]interface{}{
		"float":  42.5,
		"string": "85",
		"bad":    "not a number",
		"bool":   true,
	}

	value, err := numberArg(args, "float")
	require.NoError(t, err)
	assert.Equal(t, 42.5, value)

	value, err = numberArg(args, "string")
	require.NoError(t, err)
	assert.Equal(t, 85.0, value)

	_, err = numberArg(args, "bad")
	assert.Error(t, err)
	_, err = numberArg(args, "bool")
	assert.Error(t, err)
	_, err = numberArg(args, "missing")
	assert.Error(t, err)
}
