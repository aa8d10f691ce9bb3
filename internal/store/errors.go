package store

import "errors"

var (
	ErrDuplicateRoomName    = errors.New("a room with this name already exists")
	ErrSelfConversation     = errors.New("cannot create a conversation with yourself")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmptyMessage         = errors.New("message requires text or an attachment")
	ErrTextAndAttachment    = errors.New("message cannot carry both text and an attachment")
	ErrAttachmentType       = errors.New("only image or video attachments are allowed")
	ErrAttachmentTooLarge   = errors.New("attachment exceeds the 5 MiB limit")
)
