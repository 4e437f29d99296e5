package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// DefaultSessionId is used when a chat request carries no session id.
	DefaultSessionId = "default"
)

const (
	ModelTypeLLM       = "llm"
	ModelTypeEmbedding = "embedding"
)

const (
	SearchTypeSimilarity = "similarity"
	SearchTypeMMR        = "mmr"
)
