package domain

import "time"

// Permissions is a chat member's effective permission set, mirroring the
// Telegram chat permission flags.
type Permissions struct {
	CanSendMessages       bool `json:"can_send_messages"`
	CanSendAudios         bool `json:"can_send_audios"`
	CanSendDocuments      bool `json:"can_send_documents"`
	CanSendPhotos         bool `json:"can_send_photos"`
	CanSendVideos         bool `json:"can_send_videos"`
	CanSendVideoNotes     bool `json:"can_send_video_notes"`
	CanSendVoiceNotes     bool `json:"can_send_voice_notes"`
	CanSendPolls          bool `json:"can_send_polls"`
	CanSendOtherMessages  bool `json:"can_send_other_messages"`
	CanAddWebPagePreviews bool `json:"can_add_web_page_previews"`
	CanChangeInfo         bool `json:"can_change_info"`
	CanInviteUsers        bool `json:"can_invite_users"`
	CanPinMessages        bool `json:"can_pin_messages"`
	CanManageTopics       bool `json:"can_manage_topics"`
}

// AllowAll returns a fully unrestricted permission set. It is the fallback
// when no snapshot exists for a member that passed the challenge.
func AllowAll() Permissions {
	return Permissions{
		CanSendMessages:       true,
		CanSendAudios:         true,
		CanSendDocuments:      true,
		CanSendPhotos:         true,
		CanSendVideos:         true,
		CanSendVideoNotes:     true,
		CanSendVoiceNotes:     true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanChangeInfo:         true,
		CanInviteUsers:        true,
		CanPinMessages:        true,
		CanManageTopics:       true,
	}
}

// RestrictAll returns a permission set with every flag disabled. Members are
// restricted to it while their challenge is pending.
func RestrictAll() Permissions {
	return Permissions{}
}

// Snapshot captures a member's permissions immediately before the challenge
// restriction is applied, keyed by (chat_id, user_id).
type Snapshot struct {
	ChatID      int64       `json:"chat_id"`
	UserID      int64       `json:"user_id"`
	Permissions Permissions `json:"permissions"`
	TakenAt     time.Time   `json:"taken_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Expired reports whether the snapshot lifetime elapsed at the given moment.
func (s *Snapshot) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
