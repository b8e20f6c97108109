package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	// GetItemOwned returns the item only when ownerID owns it.
	GetItemOwned(ctx context.Context, id, ownerID int64) (*models.Item, error)
	ItemExists(ctx context.Context, id int64) (bool, error)
	ItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error)
	ItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus, updatedAt time.Time) error
	// BookingsByItem returns every booking of the item, for the overlap scan.
	BookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error)
	BookingsByRequester(ctx context.Context, userID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error)
	BookingsByOwner(ctx context.Context, ownerID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error)
	LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	LastBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	NextBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	RequestsByAuthor(ctx context.Context, authorID int64) ([]*models.ItemRequest, error)
	RequestsExcludingAuthor(ctx context.Context, authorID int64, offset, limit int) ([]*models.ItemRequest, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	CommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
	CommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.Comment, error)
}

// Store is the full persistence surface implemented by the sqlite database.
type Store interface {
	UserStore
	ItemStore
	BookingStore
	RequestStore
	CommentStore
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker mirrors booking rows to an external sink in the background.
type SyncWorker interface {
	EnqueueBooking(ctx context.Context, booking *models.Booking) error
}
