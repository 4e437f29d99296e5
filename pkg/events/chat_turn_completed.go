package events

// ChatTurnCompletedTopic is the in-process topic carrying finished chat
// turns from the streaming path to the persistence consumer.
const ChatTurnCompletedTopic = "chat.turn_completed"
