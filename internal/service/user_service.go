package service

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  domain.UserStore
	logger *zerolog.Logger
}

func NewUserService(users domain.UserStore, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UserUpdate carries the optional fields of a partial user update.
type UserUpdate struct {
	Name           *string
	Email          *string
	TelegramChatID *int64
}

func (s *UserService) Create(ctx context.Context, name, email string, telegramChatID int64) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: malformed email %q", domain.ErrValidation, email)
	}

	user := &models.User{Name: name, Email: email, TelegramChatID: telegramChatID}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, update UserUpdate) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be blank", domain.ErrValidation)
		}
		user.Name = *update.Name
	}
	if update.Email != nil {
		if !validEmail(*update.Email) {
			return nil, fmt.Errorf("%w: malformed email %q", domain.ErrValidation, *update.Email)
		}
		user.Email = *update.Email
	}
	if update.TelegramChatID != nil {
		user.TelegramChatID = *update.TelegramChatID
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}
	return s.users.DeleteUser(ctx, userID)
}

// validEmail is a shallow shape check: one @ with something on both sides
// and a dot in the domain part. Deliverability is not our problem.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	if strings.Contains(domainPart, "@") {
		return false
	}
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
