// Package tools is the function-calling registry: every capability
// the model can invoke during a conversation, from media keys to
// timers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

// Handler executes a tool call. The returned string becomes the tool
// result message fed back to the model.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// Tool pairs a function definition with its handler
type Tool struct {
	Definition ai.Function
	Handler    Handler
}

// Registry holds the tools exposed to the model
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *logging.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Registering the same name twice is an error.
func (r *Registry) Register(tool Tool) error {
	if tool.Definition.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Definition.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Definition.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Definition.Name)
	}
	r.tools[tool.Definition.Name] = tool
	return nil
}

// Definitions returns all tool definitions sorted by name, ready to
// send with a chat request
func (r *Registry) Definitions() []ai.Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]ai.Function, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.tools[name].Definition)
	}
	return defs
}

// Dispatch parses the argument JSON and runs the named tool. Errors
// come back as a string result too, so the model hears about failures
// instead of the turn dying.
func (r *Registry) Dispatch(ctx context.Context, name, argumentsJSON string) string {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warning("Model called unknown tool %s", name)
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	args := map[string]interface{}{}
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			r.logger.Warning("Bad arguments for tool %s: %v", name, err)
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
	}

	r.logger.Debug("Dispatching tool %s with args %s", name, argumentsJSON)
	result, err := tool.Handler(ctx, args)
	if err != nil {
		r.logger.Warning("Tool %s failed: %v", name, err)
		return fmt.Sprintf("Error: %v", err)
	}
	if result == "" {
		result = "OK"
	}
	return result
}

// stringArg pulls a required string argument
func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

// numberArg pulls a required numeric argument, accepting a numeric
// string since models send both
func numberArg(args map[string]interface{}, key string) (float64, error) {
	value, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
			return 0, fmt.Errorf("argument %q is not a number: %q", key, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
}

// objectSchema builds the JSON schema for a tool's parameters
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
