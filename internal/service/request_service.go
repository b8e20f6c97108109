package service

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestService handles item wishes and their answering items.
type RequestService struct {
	requests domain.RequestStore
	items    domain.ItemStore
	users    domain.UserStore
	logger   *zerolog.Logger
}

func NewRequestService(requests domain.RequestStore, items domain.ItemStore, users domain.UserStore, logger *zerolog.Logger) *RequestService {
	return &RequestService{requests: requests, items: items, users: users, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, authorID int64, description string) (*models.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	exists, err := s.users.UserExists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, authorID)
	}

	request := &models.ItemRequest{AuthorID: authorID, Description: description}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListOwn returns the author's own requests, newest first, each with the
// items offered in response.
func (s *RequestService) ListOwn(ctx context.Context, authorID int64) ([]*models.ItemRequestView, error) {
	exists, err := s.users.UserExists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, authorID)
	}

	requests, err := s.requests.RequestsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOthers pages through everyone else's requests, newest first.
func (s *RequestService) ListOthers(ctx context.Context, callerID int64, from, size int) ([]*models.ItemRequestView, error) {
	exists, err := s.users.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, callerID)
	}

	offset, limit, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.RequestsExcludingAuthor(ctx, callerID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, callerID, requestID int64) (*models.ItemRequestView, error) {
	exists, err := s.users.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, callerID)
	}

	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrRequestNotFound, requestID)
	}

	views, err := s.attachItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	items, err := s.items.ItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]models.Item, len(requests))
	for _, item := range items {
		byRequest[item.RequestID] = append(byRequest[item.RequestID], *item)
	}

	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		answered := byRequest[r.ID]
		if answered == nil {
			answered = []models.Item{}
		}
		views = append(views, &models.ItemRequestView{ItemRequest: *r, Items: answered})
	}
	return views, nil
}
