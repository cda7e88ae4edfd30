package domain

import (
	"fmt"
	"html"

	sharedErrors "github.com/rossnomann/terminator/internal/shared/errors"
)

// Outcome is the terminal result of one challenge instance.
type Outcome string

const (
	OutcomeCorrect      Outcome = "correct"
	OutcomeWrong        Outcome = "wrong"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeUnauthorized Outcome = "unauthorized"
)

// Action is what the resolved outcome requires from the messaging gateway.
type Action string

const (
	ActionNone               Action = "none"
	ActionRestorePermissions Action = "restore_permissions"
	ActionRemoveMember       Action = "remove_member"
)

// Penalty is the configured punishment policy for a failed challenge.
type Penalty string

const (
	PenaltyNone Penalty = "none"
	PenaltyKick Penalty = "kick"
)

// ParsePenalty parses a penalty policy from its config representation. An
// empty value means no penalty.
func ParsePenalty(value string) (Penalty, error) {
	switch value {
	case "", string(PenaltyNone):
		return PenaltyNone, nil
	case string(PenaltyKick):
		return PenaltyKick, nil
	default:
		return "", fmt.Errorf("%w: %q", sharedErrors.ErrUnknownPenalty, value)
	}
}

// Member identifies a chat member presented with a challenge.
type Member struct {
	ID   int64
	Name string
}

// Mention returns an HTML inline mention of the member for use in rendered
// questions. The display name is escaped.
func (m Member) Mention() string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, m.ID, html.EscapeString(m.Name))
}

// InlineButton is one answer button ready to be attached to a posted
// question: a label plus its encoded callback payload.
type InlineButton struct {
	Label string
	Data  string
}

// ButtonPress is an inbound callback event from the messaging platform.
type ButtonPress struct {
	QueryID   string
	FromID    int64
	MessageID int
	Data      string
}
