package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	challengeDomain "github.com/rossnomann/terminator/internal/modules/challenge/domain"
	"github.com/rossnomann/terminator/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
telegram_bot_token: "123:abc"
chats:
  "100":
    question: "Hello, {{.User}}! Press the green button."
    buttons:
      - {label: "Green", is_correct: true}
      - {label: "Red", is_correct: false}
    ask_delay: 5
    response_timeout: 30
    wrong_answer_penalty: kick
    timeout_penalty: kick
    notifications:
      correct: "Welcome!"
`

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, 43200*time.Second, cfg.SnapshotLifetime)
	assert.Equal(t, 86400*time.Second, cfg.SnapshotSweepInterval)

	require.Contains(t, cfg.Chats, int64(100))
	chat := cfg.Chats[100]
	assert.Equal(t, 5*time.Second, chat.AskDelay)
	assert.Equal(t, 30*time.Second, chat.ResponseTimeout)
	assert.Equal(t, challengeDomain.PenaltyKick, chat.WrongAnswerPenalty)
	assert.Equal(t, challengeDomain.PenaltyKick, chat.TimeoutPenalty)
	require.Len(t, chat.Buttons, 2)
	assert.True(t, chat.Buttons[0].IsCorrect)

	// Omitted notifications fall back to the defaults.
	assert.Equal(t, "Welcome!", chat.Notifications.Correct)
	assert.Equal(t, DefaultNotificationWrong, chat.Notifications.Wrong)
	assert.Equal(t, DefaultNotificationForbidden, chat.Notifications.Forbidden)
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing token",
			content: `http_port: "8080"`,
			wantErr: errors.ErrMissingBotToken,
		},
		{
			name:    "no chats",
			content: `telegram_bot_token: "123:abc"`,
			wantErr: errors.ErrNoChats,
		},
		{
			name: "no correct button",
			content: `
telegram_bot_token: "123:abc"
chats:
  "100":
    question: "Q?"
    buttons:
      - {label: "A", is_correct: false}
    response_timeout: 30
`,
			wantErr: errors.ErrNoCorrectButton,
		},
		{
			name: "no buttons",
			content: `
telegram_bot_token: "123:abc"
chats:
  "100":
    question: "Q?"
    response_timeout: 30
`,
			wantErr: errors.ErrNoButtons,
		},
		{
			name: "missing response timeout",
			content: `
telegram_bot_token: "123:abc"
chats:
  "100":
    question: "Q?"
    buttons:
      - {label: "A", is_correct: true}
`,
			wantErr: errors.ErrNoResponseTimeout,
		},
		{
			name: "unknown penalty",
			content: `
telegram_bot_token: "123:abc"
chats:
  "100":
    question: "Q?"
    buttons:
      - {label: "A", is_correct: true}
    response_timeout: 30
    wrong_answer_penalty: explode
`,
			wantErr: errors.ErrUnknownPenalty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRenderQuestion(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, validConfig))
	require.NoError(t, err)

	question, err := cfg.Chats[100].RenderQuestion(`<a href="tg://user?id=7">Bob</a>`)
	require.NoError(t, err)
	assert.Equal(t, `Hello, <a href="tg://user?id=7">Bob</a>! Press the green button.`, question)
}
