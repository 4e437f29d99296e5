package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role      string // "user", "assistant", "system", "tool"
	Content   string
	ToolCalls []ToolCall // populated on assistant messages that request tool use
}

// ToolCall is a model-issued request to invoke a named tool.
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

// Tool describes a callable function the model may invoke. Parameters is a
// JSON-schema object describing the arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and delivers the response incrementally.
	// onChunk is called once per token batch; returning an error aborts the stream.
	ChatStream(ctx context.Context, history []Message, onChunk func(chunk string) error, options ...Option) error

	// ChatWithTools exposes the given tools to the model. The returned message
	// either carries plain content or one or more tool calls to execute.
	ChatWithTools(ctx context.Context, history []Message, tools []Tool, options ...Option) (*Message, error)
}
