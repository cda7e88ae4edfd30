package errors

import "errors"

var (
	ErrMissingBotToken   = errors.New("telegram_bot_token is required")
	ErrNoChats           = errors.New("at least one chat must be configured")
	ErrNoButtons         = errors.New("chat must have at least one button")
	ErrNoCorrectButton   = errors.New("chat must have at least one correct button")
	ErrEmptyQuestion     = errors.New("chat question must not be empty")
	ErrNoResponseTimeout = errors.New("chat response_timeout must be greater than zero")
	ErrUnknownPenalty    = errors.New("unknown penalty")
	ErrUnknownStorage    = errors.New("unknown storage backend")
)
