package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	payloads := []Payload{
		{ChatID: 100, UserID: 7, IsCorrect: true},
		{ChatID: 100, UserID: 7, IsCorrect: false},
		{ChatID: -1001234567890, UserID: 424242, IsCorrect: true},
		{ChatID: 0, UserID: 0, IsCorrect: false},
		{ChatID: -9223372036854775808, UserID: 9223372036854775807, IsCorrect: true},
	}

	for _, payload := range payloads {
		data, err := payload.Encode()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), MaxPayloadSize)

		decoded, err := DecodePayload(data)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":             "",
		"foreign":           "some other bot data",
		"wrong prefix":      "x:100:7:1",
		"missing part":      "t:100:7",
		"extra part":        "t:100:7:1:1",
		"chat not integer":  "t:abc:7:1",
		"user not integer":  "t:100:abc:1",
		"bad flag":          "t:100:7:yes",
		"flag out of range": "t:100:7:2",
		"json payload":      `{"chat_id":100,"user_id":7,"is_right":true}`,
		"oversized":         "t:100:7:1" + strings.Repeat("0", 64),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload(input)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestMemberMention(t *testing.T) {
	member := Member{ID: 7, Name: "Bob <script>"}
	assert.Equal(t, `<a href="tg://user?id=7">Bob &lt;script&gt;</a>`, member.Mention())
}
