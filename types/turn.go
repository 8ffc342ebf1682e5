package types

// Role is the speaker of a transcript turn.
type Role string

// Turn roles.
const (
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
)

// Source is a document excerpt the backend used to produce an answer.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Turn is one entry in a conversation transcript.
// Turns are values; a pending answer is settled by replacing it in the
// transcript, never by mutating a shared Turn.
type Turn struct {
	ID      string   `json:"id"`
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Pending bool     `json:"pending"`
	Sources []Source `json:"sources,omitempty"`
}

// IsPendingAnswer returns true for an unsettled answer placeholder.
func (t Turn) IsPendingAnswer() bool {
	return t.Role == RoleAnswer && t.Pending
}
