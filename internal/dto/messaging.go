package dto

// PersistTurnMessage carries one completed chat exchange to the persistence
// consumer. The consumer writes the user turn before the assistant turn.
type PersistTurnMessage struct {
	SessionId     string `json:"session_id"`
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
}
