package prompt

import (
	"strings"

	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/pkg/llm"
)

// Placeholders recognised inside a configuration's prompt template.
const (
	ContextPlaceholder  = "{context}"
	QuestionPlaceholder = "{question}"
)

// DefaultSystemPrompt is used when a configuration carries no template of
// its own.
const DefaultSystemPrompt = "You are a helpful AI assistant. Use the provided context to answer the user's question. " +
	"If the answer is not in the context, say you don't know. " +
	"Summarize your answers in Markdown format."

// Builder assembles the message list handed to the model.
type Builder struct {
	template string
}

// NewBuilder creates a builder around a configuration's prompt template.
// An empty template falls back to DefaultSystemPrompt.
func NewBuilder(template string) *Builder {
	if strings.TrimSpace(template) == "" {
		template = DefaultSystemPrompt
	}
	return &Builder{template: template}
}

// SystemPrompt renders the template with any placeholders left intact
// removed; the human turn carries context and question separately.
func (b *Builder) SystemPrompt() string {
	s := strings.ReplaceAll(b.template, ContextPlaceholder, "")
	s = strings.ReplaceAll(s, QuestionPlaceholder, "")
	return strings.TrimSpace(s)
}

// UserTurn renders the final human message with the grounding context
// inlined. An empty context yields the bare question.
func (b *Builder) UserTurn(contextText, question string) string {
	if contextText == "" {
		return question
	}
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(question)
	return sb.String()
}

// BuildMessages composes the full chat sequence: system prompt, prior
// conversation turns, then the grounded question.
func (b *Builder) BuildMessages(history []*entity.ChatMessage, contextText, question string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: b.SystemPrompt(),
	})
	for _, h := range history {
		role := h.Role
		if role != constant.ChatMessageRoleUser && role != constant.ChatMessageRoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: h.Content,
		})
	}
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: b.UserTurn(contextText, question),
	})
	return messages
}
