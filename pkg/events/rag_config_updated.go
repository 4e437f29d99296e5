package events

import "time"

const RagConfigUpdatedType = "rag_config.updated"

// RagConfigUpdated is emitted when the active pipeline configuration changes
// in the database. Consumers drop any cached configuration on receipt.
type RagConfigUpdated struct {
	ConfigId   string
	ConfigName string
	OccurredAt time.Time
}

func NewRagConfigUpdated(configId, configName string) RagConfigUpdated {
	return RagConfigUpdated{
		ConfigId:   configId,
		ConfigName: configName,
		OccurredAt: time.Now(),
	}
}

func (e RagConfigUpdated) EventType() string {
	return RagConfigUpdatedType
}

func (e RagConfigUpdated) Payload() map[string]interface{} {
	return map[string]interface{}{
		"config_id":   e.ConfigId,
		"config_name": e.ConfigName,
		"occurred_at": e.OccurredAt.Format(time.RFC3339),
	}
}

func (e RagConfigUpdated) Timestamp() time.Time {
	return e.OccurredAt
}
