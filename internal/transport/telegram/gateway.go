package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	challengeDomain "github.com/rossnomann/terminator/internal/modules/challenge/domain"
	snapshotDomain "github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/samber/oops"
)

// Gateway implements the challenge service's messaging gateway on top of the
// Telegram Bot API client.
type Gateway struct {
	bot *bot.Bot
}

// NewGateway creates a new Telegram gateway. The bot is attached later via
// SetBot because the bot itself is constructed with the update handler that
// depends on this gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// SetBot attaches the Telegram bot client.
func (g *Gateway) SetBot(b *bot.Bot) {
	g.bot = b
}

func (g *Gateway) RestrictMember(ctx context.Context, chatID, userID int64, permissions snapshotDomain.Permissions) error {
	ok, err := g.bot.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: toChatPermissions(permissions),
	})
	if err != nil {
		return oops.With("chat_id", chatID, "user_id", userID, "context", "failed to restrict chat member").Wrap(err)
	}
	if !ok {
		return oops.With("chat_id", chatID, "user_id", userID).New("restrict chat member was rejected")
	}
	return nil
}

func (g *Gateway) RemoveMember(ctx context.Context, chatID, userID int64) error {
	ok, err := g.bot.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return oops.With("chat_id", chatID, "user_id", userID, "context", "failed to ban chat member").Wrap(err)
	}
	if !ok {
		return oops.With("chat_id", chatID, "user_id", userID).New("ban chat member was rejected")
	}
	return nil
}

func (g *Gateway) SendChallenge(ctx context.Context, chatID int64, text string, buttons []challengeDomain.InlineButton) (int, error) {
	row := make([]models.InlineKeyboardButton, 0, len(buttons))
	for _, button := range buttons {
		row = append(row, models.InlineKeyboardButton{
			Text:         button.Label,
			CallbackData: button.Data,
		})
	}

	message, err := g.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{row},
		},
	})
	if err != nil {
		return 0, oops.With("chat_id", chatID, "context", "failed to send challenge message").Wrap(err)
	}

	return message.ID, nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := g.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID, "context", "failed to delete message").Wrap(err)
	}
	if !ok {
		return oops.With("chat_id", chatID, "message_id", messageID).New("message was not deleted")
	}
	return nil
}

func (g *Gateway) AnswerCallback(ctx context.Context, queryID, text string) error {
	ok, err := g.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	})
	if err != nil {
		return oops.With("query_id", queryID, "context", "failed to answer callback query").Wrap(err)
	}
	if !ok {
		return oops.With("query_id", queryID).New("callback query answer was rejected")
	}
	return nil
}

func (g *Gateway) MemberPermissions(ctx context.Context, chatID, userID int64) (snapshotDomain.Permissions, error) {
	member, err := g.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return snapshotDomain.Permissions{}, oops.With("chat_id", chatID, "user_id", userID, "context", "failed to get chat member").Wrap(err)
	}

	return memberPermissions(member), nil
}

// memberPermissions maps a chat member's status to an effective permission
// set. Administrators, owners, plain members and users who already left are
// treated as fully allowed; banned users as fully restricted.
func memberPermissions(member *models.ChatMember) snapshotDomain.Permissions {
	switch member.Type {
	case models.ChatMemberTypeBanned:
		return snapshotDomain.RestrictAll()
	case models.ChatMemberTypeRestricted:
		restricted := member.Restricted
		return snapshotDomain.Permissions{
			CanSendMessages:       restricted.CanSendMessages,
			CanSendAudios:         restricted.CanSendAudios,
			CanSendDocuments:      restricted.CanSendDocuments,
			CanSendPhotos:         restricted.CanSendPhotos,
			CanSendVideos:         restricted.CanSendVideos,
			CanSendVideoNotes:     restricted.CanSendVideoNotes,
			CanSendVoiceNotes:     restricted.CanSendVoiceNotes,
			CanSendPolls:          restricted.CanSendPolls,
			CanSendOtherMessages:  restricted.CanSendOtherMessages,
			CanAddWebPagePreviews: restricted.CanAddWebPagePreviews,
			CanChangeInfo:         restricted.CanChangeInfo,
			CanInviteUsers:        restricted.CanInviteUsers,
			CanPinMessages:        restricted.CanPinMessages,
			CanManageTopics:       restricted.CanManageTopics,
		}
	default:
		return snapshotDomain.AllowAll()
	}
}

func toChatPermissions(permissions snapshotDomain.Permissions) *models.ChatPermissions {
	return &models.ChatPermissions{
		CanSendMessages:       permissions.CanSendMessages,
		CanSendAudios:         permissions.CanSendAudios,
		CanSendDocuments:      permissions.CanSendDocuments,
		CanSendPhotos:         permissions.CanSendPhotos,
		CanSendVideos:         permissions.CanSendVideos,
		CanSendVideoNotes:     permissions.CanSendVideoNotes,
		CanSendVoiceNotes:     permissions.CanSendVoiceNotes,
		CanSendPolls:          permissions.CanSendPolls,
		CanSendOtherMessages:  permissions.CanSendOtherMessages,
		CanAddWebPagePreviews: permissions.CanAddWebPagePreviews,
		CanChangeInfo:         permissions.CanChangeInfo,
		CanInviteUsers:        permissions.CanInviteUsers,
		CanPinMessages:        permissions.CanPinMessages,
		CanManageTopics:       permissions.CanManageTopics,
	}
}
