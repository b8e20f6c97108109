package models

import "time"

type Booking struct {
	ID          int64         `json:"id"`
	ItemID      int64         `json:"item_id"`
	RequesterID int64         `json:"requester_id"`
	// ItemOwnerID is a snapshot taken at creation time. Approval checks use
	// it even if the item changes hands later.
	ItemOwnerID int64         `json:"item_owner_id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingRef is the short form embedded into item views.
type BookingRef struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func (b *Booking) Ref() *BookingRef {
	if b == nil {
		return nil
	}
	return &BookingRef{ID: b.ID, RequesterID: b.RequesterID, Start: b.Start, End: b.End}
}
