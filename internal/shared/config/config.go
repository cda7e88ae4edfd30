package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	challengeDomain "github.com/rossnomann/terminator/internal/modules/challenge/domain"
	"github.com/rossnomann/terminator/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Storage backends for the permission snapshot store.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Default notification texts, matching what the bot answers when a chat
// config leaves them out.
const (
	DefaultNotificationCorrect   = "Ok"
	DefaultNotificationWrong     = "Wrong!"
	DefaultNotificationForbidden = "You are not allowed to press this button!"
)

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	TelegramBotToken      string
	TelegramAPIURL        string
	HTTPPort              string
	WebhookPath           string
	StorageBackend        string
	StoragePath           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SnapshotLifetime      time.Duration
	SnapshotSweepInterval time.Duration
	Chats                 map[int64]*ChatConfig
}

// ChatConfig governs the challenge presented in one chat.
type ChatConfig struct {
	Question           string
	Buttons            []Button
	AskDelay           time.Duration
	ResponseTimeout    time.Duration
	WrongAnswerPenalty challengeDomain.Penalty
	TimeoutPenalty     challengeDomain.Penalty
	Notifications      Notifications

	question *template.Template
}

// Button is one configured answer option.
type Button struct {
	Label     string `koanf:"label"`
	IsCorrect bool   `koanf:"is_correct"`
}

// Notifications are the callback answer texts per outcome.
type Notifications struct {
	Correct   string `koanf:"correct"`
	Wrong     string `koanf:"wrong"`
	Forbidden string `koanf:"forbidden"`
}

type rawConfig struct {
	TelegramBotToken      string                   `koanf:"telegram_bot_token"`
	TelegramAPIURL        string                   `koanf:"telegram_api_url"`
	HTTPPort              string                   `koanf:"http_port"`
	WebhookPath           string                   `koanf:"webhook_path"`
	StorageBackend        string                   `koanf:"storage_backend"`
	StoragePath           string                   `koanf:"storage_path"`
	RedisAddr             string                   `koanf:"redis_addr"`
	RedisPassword         string                   `koanf:"redis_password"`
	RedisDB               int                      `koanf:"redis_db"`
	SnapshotLifetime      int                      `koanf:"snapshot_lifetime"`
	SnapshotSweepInterval int                      `koanf:"snapshot_sweep_interval"`
	Chats                 map[string]rawChatConfig `koanf:"chats"`
}

type rawChatConfig struct {
	Question           string        `koanf:"question"`
	Buttons            []Button      `koanf:"buttons"`
	AskDelay           int           `koanf:"ask_delay"`
	ResponseTimeout    int           `koanf:"response_timeout"`
	WrongAnswerPenalty string        `koanf:"wrong_answer_penalty"`
	TimeoutPenalty     string        `koanf:"timeout_penalty"`
	Notifications      Notifications `koanf:"notifications"`
}

// Load reads configuration from the first existing config file in the
// working directory, with environment variables taking precedence.
func Load() (*Config, error) {
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, _ := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	return LoadFrom(configFile)
}

// LoadFrom reads configuration from the given file path. An empty path means
// environment variables only.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		ext := filepath.Ext(path)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, oops.With("config_file", path).Wrap(err)
		}
	}

	// Environment variables override config file values.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("telegram_api_url") {
		k.Set("telegram_api_url", "https://api.telegram.org")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}
	if !k.Exists("storage_backend") {
		k.Set("storage_backend", StorageFile)
	}
	if !k.Exists("storage_path") {
		k.Set("storage_path", "./data")
	}
	if !k.Exists("redis_addr") {
		k.Set("redis_addr", "localhost:6379")
	}
	if !k.Exists("snapshot_lifetime") {
		k.Set("snapshot_lifetime", 43200)
	}
	if !k.Exists("snapshot_sweep_interval") {
		k.Set("snapshot_sweep_interval", 86400)
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if raw.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}
	if raw.StorageBackend != StorageFile && raw.StorageBackend != StorageRedis {
		return nil, oops.With("storage_backend", raw.StorageBackend).Wrap(errors.ErrUnknownStorage)
	}

	chats, err := chatsFromRaw(raw.Chats)
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken:      raw.TelegramBotToken,
		TelegramAPIURL:        raw.TelegramAPIURL,
		HTTPPort:              raw.HTTPPort,
		WebhookPath:           raw.WebhookPath,
		StorageBackend:        raw.StorageBackend,
		StoragePath:           raw.StoragePath,
		RedisAddr:             raw.RedisAddr,
		RedisPassword:         raw.RedisPassword,
		RedisDB:               raw.RedisDB,
		SnapshotLifetime:      time.Duration(raw.SnapshotLifetime) * time.Second,
		SnapshotSweepInterval: time.Duration(raw.SnapshotSweepInterval) * time.Second,
		Chats:                 chats,
	}, nil
}

func chatsFromRaw(raw map[string]rawChatConfig) (map[int64]*ChatConfig, error) {
	if len(raw) == 0 {
		return nil, errors.ErrNoChats
	}

	chats := make(map[int64]*ChatConfig, len(raw))
	for key, rawChat := range raw {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, oops.With("chat_id", key, "context", "chat id must be an integer").Wrap(err)
		}

		chat, err := chatFromRaw(rawChat)
		if err != nil {
			return nil, oops.With("chat_id", key).Wrap(err)
		}

		chats[chatID] = chat
	}

	return chats, nil
}

func chatFromRaw(raw rawChatConfig) (*ChatConfig, error) {
	if strings.TrimSpace(raw.Question) == "" {
		return nil, errors.ErrEmptyQuestion
	}
	if len(raw.Buttons) == 0 {
		return nil, errors.ErrNoButtons
	}
	// A challenge without a correct button can never be passed.
	if !lo.SomeBy(raw.Buttons, func(b Button) bool { return b.IsCorrect }) {
		return nil, errors.ErrNoCorrectButton
	}
	if raw.ResponseTimeout <= 0 {
		return nil, errors.ErrNoResponseTimeout
	}

	wrongPenalty, err := challengeDomain.ParsePenalty(raw.WrongAnswerPenalty)
	if err != nil {
		return nil, oops.With("field", "wrong_answer_penalty").Wrap(err)
	}
	timeoutPenalty, err := challengeDomain.ParsePenalty(raw.TimeoutPenalty)
	if err != nil {
		return nil, oops.With("field", "timeout_penalty").Wrap(err)
	}

	notifications := raw.Notifications
	if notifications.Correct == "" {
		notifications.Correct = DefaultNotificationCorrect
	}
	if notifications.Wrong == "" {
		notifications.Wrong = DefaultNotificationWrong
	}
	if notifications.Forbidden == "" {
		notifications.Forbidden = DefaultNotificationForbidden
	}

	chat := &ChatConfig{
		Question:           raw.Question,
		Buttons:            raw.Buttons,
		AskDelay:           time.Duration(raw.AskDelay) * time.Second,
		ResponseTimeout:    time.Duration(raw.ResponseTimeout) * time.Second,
		WrongAnswerPenalty: wrongPenalty,
		TimeoutPenalty:     timeoutPenalty,
		Notifications:      notifications,
	}
	if err := chat.Compile(); err != nil {
		return nil, err
	}

	return chat, nil
}

// Compile parses the question template. Load calls it for every chat; it is
// exported so hand-built configs can compile theirs too.
func (c *ChatConfig) Compile() error {
	tpl, err := template.New("question").Parse(c.Question)
	if err != nil {
		return oops.With("context", "failed to parse question template").Wrap(err)
	}
	c.question = tpl
	return nil
}

// RenderQuestion renders the question template with the member's mention
// bound as {{.User}}.
func (c *ChatConfig) RenderQuestion(mention string) (string, error) {
	if c.question == nil {
		return "", oops.Errorf("question template is not compiled")
	}

	var buf bytes.Buffer
	if err := c.question.Execute(&buf, map[string]string{"User": mention}); err != nil {
		return "", oops.With("context", "failed to render question").Wrap(err)
	}

	return strings.TrimSpace(buf.String()), nil
}
