package models

import "time"

// ItemRequest is a wish for an item nobody has listed yet. Other users may
// answer it by creating an item referencing the request.
type ItemRequest struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemRequestView carries the items offered in response to the request.
type ItemRequestView struct {
	ItemRequest
	Items []Item `json:"items"`
}
