package message

import "time"

// Outbound message types recognized by clients.
const (
	TypeConnectionEstablished = "connection_established"
	TypeSystemMessage         = "system_message"
	TypeAgentMessage          = "agent_message"
	TypeTypingIndicator       = "typing_indicator"
	TypeTypingProgress        = "typing_progress"
	TypePong                  = "pong"
	TypeError                 = "error"
)

// Envelope is the flat JSON message format used on the wire: a "type" field
// plus type-specific payload keys.
type Envelope map[string]any

// Type returns the envelope's message type, or "" when absent.
func (e Envelope) Type() string {
	t, _ := e["type"].(string)
	return t
}

// EnsureTimestamp assigns a server timestamp unless the caller supplied one.
// Timestamps are Unix milliseconds.
func (e Envelope) EnsureTimestamp(now time.Time) {
	if _, ok := e["timestamp"]; !ok {
		e["timestamp"] = now.UnixMilli()
	}
}

// ConnectionEstablished confirms a successful handshake.
func ConnectionEstablished(sessionID string, at time.Time) Envelope {
	return Envelope{
		"type":       TypeConnectionEstablished,
		"session_id": sessionID,
		"timestamp":  at.UnixMilli(),
	}
}

// SystemMessage carries service-level text not spoken by the decoy.
func SystemMessage(text string) Envelope {
	return Envelope{"type": TypeSystemMessage, "text": text}
}

// AgentMessage carries one decoy utterance chunk.
func AgentMessage(text, agentName string, final bool) Envelope {
	return Envelope{
		"type":       TypeAgentMessage,
		"text":       text,
		"agent_name": agentName,
		"final":      final,
	}
}

// TypingIndicator reports whether the decoy is currently "typing".
func TypingIndicator(isTyping bool, agentName string) Envelope {
	e := Envelope{"type": TypeTypingIndicator, "is_typing": isTyping}
	if agentName != "" {
		e["agent_name"] = agentName
	}
	return e
}

// TypingProgress reports fractional progress through a simulated typing delay.
func TypingProgress(progress, remaining float64) Envelope {
	return Envelope{
		"type":      TypeTypingProgress,
		"progress":  progress,
		"remaining": remaining,
	}
}

// Pong answers an inbound ping.
func Pong(at time.Time) Envelope {
	return Envelope{"type": TypePong, "timestamp": at.UnixMilli()}
}

// Error reports a recoverable per-message failure; the session stays open.
func Error(code, detail string) Envelope {
	return Envelope{"type": TypeError, "error": code, "detail": detail}
}
