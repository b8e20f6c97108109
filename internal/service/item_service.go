package service

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/clock"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService handles item CRUD, search, comments and the owner-only
// last/next booking annotations on item views.
type ItemService struct {
	items    domain.ItemStore
	users    domain.UserStore
	bookings domain.BookingStore
	comments domain.CommentStore
	requests domain.RequestStore
	clock    clock.Clock
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemStore,
	users domain.UserStore,
	bookings domain.BookingStore,
	comments domain.CommentStore,
	requests domain.RequestStore,
	clk clock.Clock,
	logger *zerolog.Logger,
) *ItemService {
	if clk == nil {
		clk = clock.System()
	}
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		clock:    clk,
		logger:   logger,
	}
}

// ItemUpdate carries the optional fields of a partial item update.
type ItemUpdate struct {
	Name        *string
	Description *string
	Available   *bool
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, name, description string, available *bool, requestID int64) (*models.Item, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: name and description are required", domain.ErrValidation)
	}
	if available == nil {
		return nil, fmt.Errorf("%w: available flag is required", domain.ErrValidation)
	}

	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, ownerID)
	}

	if requestID != 0 {
		request, err := s.requests.GetRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if request == nil {
			return nil, fmt.Errorf("%w: id %d", domain.ErrRequestNotFound, requestID)
		}
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Available:   *available,
		RequestID:   requestID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a partial update. Only the owner may update; for anyone
// else the item does not exist.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, update ItemUpdate) (*models.Item, error) {
	item, err := s.items.GetItemOwned(ctx, itemID, ownerID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d for user %d", domain.ErrItemNotFound, itemID, ownerID)
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Available != nil {
		item.Available = *update.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns the item with its comments. The caller sees last/next booking
// refs only when they own the item; the redaction happens here, not in the
// booking queries.
func (s *ItemService) Get(ctx context.Context, itemID, callerID int64) (*models.ItemView, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, itemID)
	}

	comments, err := s.comments.CommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view := &models.ItemView{Item: *item, Comments: derefComments(comments)}

	if item.OwnerID == callerID {
		now := s.clock.Now()
		last, err := s.bookings.LastBooking(ctx, itemID, now)
		if err != nil {
			return nil, err
		}
		next, err := s.bookings.NextBooking(ctx, itemID, now)
		if err != nil {
			return nil, err
		}
		view.LastBooking = last.Ref()
		view.NextBooking = next.Ref()
	}

	return view, nil
}

// ListByOwner returns the owner's items with comments and last/next booking
// annotations, resolved in batch.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemView, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, ownerID)
	}

	offset, limit, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ItemsByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	commentMap, err := s.comments.CommentsByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	lastMap, err := s.bookings.LastBookings(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}
	nextMap, err := s.bookings.NextBookings(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, &models.ItemView{
			Item:        *item,
			LastBooking: lastMap[item.ID].Ref(),
			NextBooking: nextMap[item.ID].Ref(),
			Comments:    derefComments(commentMap[item.ID]),
		})
	}
	return views, nil
}

// Search finds available items whose name or description contains the text,
// case-insensitively. Empty text yields an empty result, not everything.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	offset, limit, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	items, err := s.items.SearchItems(ctx, text, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// AddComment lets a user review an item they actually rented: at least one
// of their bookings of it must have ended by now.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}

	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, authorID)
	}

	exists, err := s.items.ItemExists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, itemID)
	}

	finished, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.ErrCommentNotAllowed
	}

	comment := &models.Comment{
		ItemID:   itemID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorName = author.Name
	return comment, nil
}

func derefComments(comments []*models.Comment) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, *c)
	}
	return out
}
