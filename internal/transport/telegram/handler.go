package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	challengeDomain "github.com/rossnomann/terminator/internal/modules/challenge/domain"
	challengeService "github.com/rossnomann/terminator/internal/modules/challenge/service"
)

// Handler routes Telegram updates to the challenge service.
type Handler struct {
	challengeService *challengeService.Service
}

// New creates a new Telegram handler.
func New(challengeService *challengeService.Service) *Handler {
	return &Handler{
		challengeService: challengeService,
	}
}

// HandleUpdate processes incoming updates. Nothing here may fail loudly: the
// challenge service logs and absorbs its own errors.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.Message != nil && len(update.Message.NewChatMembers) > 0:
		h.processNewChatMembers(update.Message)
	case update.CallbackQuery != nil:
		h.processCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (h *Handler) processNewChatMembers(msg *models.Message) {
	members := make([]challengeDomain.Member, 0, len(msg.NewChatMembers))
	for _, user := range msg.NewChatMembers {
		if user.IsBot {
			continue
		}
		members = append(members, challengeDomain.Member{
			ID:   user.ID,
			Name: displayName(&user),
		})
	}

	if len(members) == 0 {
		return
	}

	h.challengeService.HandleJoin(msg.Chat.ID, members)
}

func (h *Handler) processCallbackQuery(ctx context.Context, query *models.CallbackQuery) {
	h.challengeService.HandleAnswer(ctx, challengeDomain.ButtonPress{
		QueryID:   query.ID,
		FromID:    query.From.ID,
		MessageID: messageID(query.Message),
		Data:      query.Data,
	})
}

func messageID(message models.MaybeInaccessibleMessage) int {
	if message.Message != nil {
		return message.Message.ID
	}
	if message.InaccessibleMessage != nil {
		return message.InaccessibleMessage.MessageID
	}
	return 0
}

func displayName(user *models.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	return name
}
