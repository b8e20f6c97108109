package gateway

import "time"

// DTOs validated at the gateway before a request reaches the core service.
// The validation mirrors the server's own checks so obviously bad input is
// rejected without a hop.

type createUserDTO struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	TelegramChatID int64  `json:"telegram_chat_id"`
}

type updateUserDTO struct {
	Name           *string `json:"name" validate:"omitempty,min=1"`
	Email          *string `json:"email" validate:"omitempty,email"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

type createItemDTO struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   int64  `json:"request_id" validate:"omitempty,gt=0"`
}

type updateItemDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Available   *bool   `json:"available"`
}

type createBookingDTO struct {
	ItemID int64     `json:"item_id" validate:"required,gt=0"`
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
}

type createRequestDTO struct {
	Description string `json:"description" validate:"required"`
}

type createCommentDTO struct {
	Text string `json:"text" validate:"required"`
}
