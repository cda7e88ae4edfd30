package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rossnomann/terminator/internal/modules/challenge/domain"
	snapshotDomain "github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/rossnomann/terminator/internal/modules/snapshot/repository"
	snapshotService "github.com/rossnomann/terminator/internal/modules/snapshot/service"
	"github.com/rossnomann/terminator/internal/shared/config"
)

// Gateway is the messaging platform surface the orchestrator depends on.
type Gateway interface {
	RestrictMember(ctx context.Context, chatID, userID int64, permissions snapshotDomain.Permissions) error
	RemoveMember(ctx context.Context, chatID, userID int64) error
	SendChallenge(ctx context.Context, chatID int64, text string, buttons []domain.InlineButton) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, queryID, text string) error
	MemberPermissions(ctx context.Context, chatID, userID int64) (snapshotDomain.Permissions, error)
}

// Service drives the per-member challenge lifecycle: restrict, snapshot,
// post the question, then race the member's answer against the response
// deadline. Each joining member runs in its own goroutine; the answer and
// timeout paths for one member run concurrently and are reconciled through
// the pending registry plus the delete-success check on the platform.
type Service struct {
	cfg       *config.Config
	gateway   Gateway
	snapshots *snapshotService.Service

	mu      sync.Mutex
	pending map[string]int // key -> posted question message id

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new challenge service.
func New(cfg *config.Config, gateway Gateway, snapshots *snapshotService.Service) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:       cfg,
		gateway:   gateway,
		snapshots: snapshots,
		pending:   make(map[string]int),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates all in-flight lifecycles and waits for them to exit.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

// HandleJoin starts one challenge lifecycle per joined member. It returns
// immediately; chats without a config are ignored.
func (s *Service) HandleJoin(chatID int64, members []domain.Member) {
	chat, ok := s.cfg.Chats[chatID]
	if !ok {
		slog.Info("Config not found for chat", "chat_id", chatID)
		return
	}

	for _, member := range members {
		s.wg.Add(1)
		go s.runChallenge(chatID, chat, member)
	}
}

func (s *Service) runChallenge(chatID int64, chat *config.ChatConfig, member domain.Member) {
	defer s.wg.Done()

	if chat.AskDelay > 0 {
		slog.Info("Waiting before question", "chat_id", chatID, "user_id", member.ID, "delay", chat.AskDelay)
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(chat.AskDelay):
		}
	}

	permissions, err := s.gateway.MemberPermissions(s.ctx, chatID, member.ID)
	if err != nil {
		slog.Warn("Failed to get member permissions, assuming unrestricted", "chat_id", chatID, "user_id", member.ID, "error", err)
		permissions = snapshotDomain.AllowAll()
	}

	if err := s.snapshots.Put(s.ctx, chatID, member.ID, permissions); err != nil {
		slog.Warn("Failed to store permission snapshot", "chat_id", chatID, "user_id", member.ID, "error", err)
	}

	if err := s.gateway.RestrictMember(s.ctx, chatID, member.ID, snapshotDomain.RestrictAll()); err != nil {
		slog.Error("Failed to restrict member, aborting challenge", "chat_id", chatID, "user_id", member.ID, "error", err)
		return
	}

	question, err := chat.RenderQuestion(member.Mention())
	if err != nil {
		slog.Error("Failed to render question, aborting challenge", "chat_id", chatID, "user_id", member.ID, "error", err)
		return
	}

	buttons := make([]domain.InlineButton, 0, len(chat.Buttons))
	for _, button := range chat.Buttons {
		payload := domain.Payload{ChatID: chatID, UserID: member.ID, IsCorrect: button.IsCorrect}
		data, err := payload.Encode()
		if err != nil {
			slog.Error("Failed to encode button payload, aborting challenge", "chat_id", chatID, "user_id", member.ID, "error", err)
			return
		}
		buttons = append(buttons, domain.InlineButton{Label: button.Label, Data: data})
	}

	messageID, err := s.gateway.SendChallenge(s.ctx, chatID, question, buttons)
	if err != nil {
		slog.Error("Failed to send question, aborting challenge", "chat_id", chatID, "user_id", member.ID, "error", err)
		return
	}

	s.track(chatID, member.ID, messageID)

	s.wg.Add(1)
	go s.watchTimeout(chatID, member.ID, messageID, chat)
}

// HandleAnswer processes an inbound button press. It always acknowledges the
// callback, even when the payload cannot be resolved.
func (s *Service) HandleAnswer(ctx context.Context, press domain.ButtonPress) {
	payload, err := domain.DecodePayload(press.Data)
	if err != nil {
		// Foreign or corrupted callback data: answer and move on.
		s.answer(ctx, press.QueryID, config.DefaultNotificationForbidden)
		return
	}

	chat, ok := s.cfg.Chats[payload.ChatID]
	if !ok {
		return
	}

	if press.FromID != payload.UserID {
		resolution := Resolve(chat, domain.OutcomeUnauthorized)
		s.answer(ctx, press.QueryID, resolution.Notification)
		return
	}

	messageID, claimed := s.claim(payload.ChatID, payload.UserID)
	if !claimed {
		messageID = press.MessageID
	}

	deleteErr := s.gateway.DeleteMessage(ctx, payload.ChatID, messageID)
	if deleteErr != nil {
		slog.Warn("Failed to delete question", "chat_id", payload.ChatID, "message_id", messageID, "error", deleteErr)
	} else {
		slog.Info("Question deleted", "chat_id", payload.ChatID, "message_id", messageID)
	}

	// The press wins the race when it claimed the pending entry, or, with no
	// entry to claim (process restart), when it deleted the question first.
	// A losing press must not restore or remove anything: the timeout path
	// already concluded this challenge.
	won := claimed || deleteErr == nil

	outcome := domain.OutcomeWrong
	if payload.IsCorrect {
		outcome = domain.OutcomeCorrect
	}
	resolution := Resolve(chat, outcome)

	if won {
		s.apply(ctx, payload.ChatID, payload.UserID, resolution.Action)
	}

	s.answer(ctx, press.QueryID, resolution.Notification)
}

func (s *Service) watchTimeout(chatID, userID int64, messageID int, chat *config.ChatConfig) {
	defer s.wg.Done()

	select {
	case <-s.ctx.Done():
		return
	case <-time.After(chat.ResponseTimeout):
	}

	if _, claimed := s.claim(chatID, userID); !claimed {
		return
	}

	// Deleting the question successfully proves the member never answered:
	// the message still existed at the moment of deletion.
	if err := s.gateway.DeleteMessage(s.ctx, chatID, messageID); err != nil {
		slog.Info("Failed to delete question, member likely answered", "chat_id", chatID, "message_id", messageID, "error", err)
		return
	}

	slog.Info("Question deleted on timeout", "chat_id", chatID, "user_id", userID, "message_id", messageID)

	resolution := Resolve(chat, domain.OutcomeTimeout)
	s.apply(s.ctx, chatID, userID, resolution.Action)
}

func (s *Service) apply(ctx context.Context, chatID, userID int64, action domain.Action) {
	switch action {
	case domain.ActionRestorePermissions:
		permissions, err := s.snapshots.Take(ctx, chatID, userID)
		if err != nil {
			if !errors.Is(err, repository.ErrSnapshotNotFound) {
				slog.Warn("Failed to take permission snapshot", "chat_id", chatID, "user_id", userID, "error", err)
			}
			permissions = snapshotDomain.AllowAll()
		}
		if err := s.gateway.RestrictMember(ctx, chatID, userID, permissions); err != nil {
			slog.Error("Failed to restore member permissions", "chat_id", chatID, "user_id", userID, "error", err)
		}
	case domain.ActionRemoveMember:
		if err := s.gateway.RemoveMember(ctx, chatID, userID); err != nil {
			slog.Error("Failed to remove member", "chat_id", chatID, "user_id", userID, "error", err)
		} else {
			slog.Info("Member removed", "chat_id", chatID, "user_id", userID)
		}
	}
}

func (s *Service) answer(ctx context.Context, queryID, text string) {
	if err := s.gateway.AnswerCallback(ctx, queryID, text); err != nil {
		slog.Warn("Failed to answer callback query", "query_id", queryID, "error", err)
	}
}

func (s *Service) track(chatID, userID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[pendingKey(chatID, userID)] = messageID
}

// claim removes the pending entry for the key. Exactly one of the two
// completion paths can succeed, which keeps penalties at most once per
// challenge instance.
func (s *Service) claim(chatID, userID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingKey(chatID, userID)
	messageID, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	return messageID, ok
}

func pendingKey(chatID, userID int64) string {
	return fmt.Sprintf("%d_%d", chatID, userID)
}
