package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPayloadSize is the platform ceiling for callback button data, in bytes.
const MaxPayloadSize = 64

// payloadPrefix guards against foreign-origin callback data.
const payloadPrefix = "t"

var (
	// ErrPayloadTooLarge means the encoded payload exceeds MaxPayloadSize.
	// Callers must treat it as a configuration error.
	ErrPayloadTooLarge = errors.New("encoded payload exceeds size limit")
	// ErrMalformedPayload means the callback data did not originate from
	// this bot or was corrupted. Such presses are ignored, never fatal.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Payload is the compact identifier embedded in each challenge button. It
// round-trips exactly through Encode and DecodePayload.
type Payload struct {
	ChatID    int64
	UserID    int64
	IsCorrect bool
}

// Encode serializes the payload as "t:<chat_id>:<user_id>:<0|1>". The scheme
// is deterministic and stays well under the platform's 64-byte callback data
// ceiling, unlike key-value JSON.
func (p Payload) Encode() (string, error) {
	correct := "0"
	if p.IsCorrect {
		correct = "1"
	}
	data := fmt.Sprintf("%s:%d:%d:%s", payloadPrefix, p.ChatID, p.UserID, correct)
	if len(data) > MaxPayloadSize {
		return "", ErrPayloadTooLarge
	}
	return data, nil
}

// DecodePayload parses callback data produced by Encode. Any malformed or
// foreign input yields ErrMalformedPayload.
func DecodePayload(data string) (Payload, error) {
	if len(data) > MaxPayloadSize {
		return Payload{}, ErrMalformedPayload
	}

	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != payloadPrefix {
		return Payload{}, ErrMalformedPayload
	}

	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Payload{}, ErrMalformedPayload
	}

	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Payload{}, ErrMalformedPayload
	}

	var isCorrect bool
	switch parts[3] {
	case "0":
		isCorrect = false
	case "1":
		isCorrect = true
	default:
		return Payload{}, ErrMalformedPayload
	}

	return Payload{ChatID: chatID, UserID: userID, IsCorrect: isCorrect}, nil
}
