package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind separates the parallel conversation histories kept per session. The
// case-detection, intent-analysis, and general-answer prompts each see their
// own history so that classifier tokens never leak into user-facing answers.
type Kind string

const (
	KindDetection Kind = "detection"
	KindAnalysis  Kind = "analysis"
	KindGeneral   Kind = "general"
	KindKnowledge Kind = "knowledge"
)

// Message is one utterance in a session's conversation history.
type Message struct {
	ID        int64  `db:"id"`
	SessionID string `db:"session_id"`
	Kind      Kind   `db:"kind"`
	Role      Role   `db:"role"`
	Content   string `db:"content"`
}
