package service

import (
	"testing"

	"github.com/rossnomann/terminator/internal/modules/challenge/domain"
	"github.com/rossnomann/terminator/internal/shared/config"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	notifications := config.Notifications{
		Correct:   "welcome",
		Wrong:     "nope",
		Forbidden: "hands off",
	}

	tests := []struct {
		name           string
		wrongPenalty   domain.Penalty
		timeoutPenalty domain.Penalty
		outcome        domain.Outcome
		want           Resolution
	}{
		{
			name:    "correct answer restores permissions",
			outcome: domain.OutcomeCorrect,
			want:    Resolution{Notification: "welcome", Action: domain.ActionRestorePermissions},
		},
		{
			name:         "wrong answer with kick penalty",
			wrongPenalty: domain.PenaltyKick,
			outcome:      domain.OutcomeWrong,
			want:         Resolution{Notification: "nope", Action: domain.ActionRemoveMember},
		},
		{
			name:         "wrong answer without penalty",
			wrongPenalty: domain.PenaltyNone,
			outcome:      domain.OutcomeWrong,
			want:         Resolution{Notification: "nope", Action: domain.ActionNone},
		},
		{
			name:           "timeout with kick penalty",
			timeoutPenalty: domain.PenaltyKick,
			outcome:        domain.OutcomeTimeout,
			want:           Resolution{Action: domain.ActionRemoveMember},
		},
		{
			name:           "timeout without penalty",
			timeoutPenalty: domain.PenaltyNone,
			outcome:        domain.OutcomeTimeout,
			want:           Resolution{Action: domain.ActionNone},
		},
		{
			name:    "unauthorized press is acknowledged only",
			outcome: domain.OutcomeUnauthorized,
			want:    Resolution{Notification: "hands off", Action: domain.ActionNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.ChatConfig{
				Notifications:      notifications,
				WrongAnswerPenalty: tt.wrongPenalty,
				TimeoutPenalty:     tt.timeoutPenalty,
			}
			assert.Equal(t, tt.want, Resolve(cfg, tt.outcome))
		})
	}
}
