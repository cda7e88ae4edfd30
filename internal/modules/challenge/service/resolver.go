package service

import (
	"github.com/rossnomann/terminator/internal/modules/challenge/domain"
	"github.com/rossnomann/terminator/internal/shared/config"
)

// Resolution is what a concluded challenge requires: the callback answer text
// and the gateway action to apply.
type Resolution struct {
	Notification string
	Action       domain.Action
}

// Resolve maps a challenge outcome to its resolution under the chat config.
// Pure function, no side effects.
func Resolve(cfg *config.ChatConfig, outcome domain.Outcome) Resolution {
	switch outcome {
	case domain.OutcomeCorrect:
		return Resolution{
			Notification: cfg.Notifications.Correct,
			Action:       domain.ActionRestorePermissions,
		}
	case domain.OutcomeWrong:
		return Resolution{
			Notification: cfg.Notifications.Wrong,
			Action:       penaltyAction(cfg.WrongAnswerPenalty),
		}
	case domain.OutcomeTimeout:
		return Resolution{
			Action: penaltyAction(cfg.TimeoutPenalty),
		}
	default:
		return Resolution{
			Notification: cfg.Notifications.Forbidden,
			Action:       domain.ActionNone,
		}
	}
}

func penaltyAction(penalty domain.Penalty) domain.Action {
	if penalty == domain.PenaltyKick {
		return domain.ActionRemoveMember
	}
	return domain.ActionNone
}
