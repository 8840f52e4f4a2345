package domain

// Message is a single conversation turn as delivered by the platform.
// Immutable once created.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// SenderScammer is the sender role assigned to the counterpart under
// observation. Only their turns are mined for indicators.
const SenderScammer = "scammer"

// Metadata carries optional channel hints from the platform.
type Metadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// InboundEvent is one inbound message for a session, optionally accompanied
// by the platform's view of the prior transcript.
type InboundEvent struct {
	SessionID           string    `json:"sessionId"`
	Message             Message   `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
	Metadata            *Metadata `json:"metadata,omitempty"`
}
