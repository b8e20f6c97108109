package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// UserService is the slice of the user service the HTTP layer needs.
type UserService interface {
	Create(ctx context.Context, name, email string, telegramChatID int64) (*models.User, error)
	Update(ctx context.Context, userID int64, update service.UserUpdate) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, userID int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, name, description string, available *bool, requestID int64) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, update service.ItemUpdate) (*models.Item, error)
	Get(ctx context.Context, itemID, callerID int64) (*models.ItemView, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemView, error)
	Search(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	Create(ctx context.Context, requesterID, itemID int64, start, end time.Time) (*models.Booking, error)
	Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListByRequester(ctx context.Context, userID int64, stateToken string, from, size int) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, stateToken string, from, size int) ([]*models.Booking, error)
}

type RequestService interface {
	Create(ctx context.Context, authorID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, authorID int64) ([]*models.ItemRequestView, error)
	ListOthers(ctx context.Context, callerID int64, from, size int) ([]*models.ItemRequestView, error)
	Get(ctx context.Context, callerID, requestID int64) (*models.ItemRequestView, error)
}

// Exporter builds the xlsx workbook for an owner's bookings.
type Exporter interface {
	OwnerBookings(ctx context.Context, ownerID int64) ([]byte, error)
}

// Server is the core HTTP API over the booking engine.
type Server struct {
	cfg      config.ServerConfig
	users    UserService
	items    ItemService
	bookings BookingService
	requests RequestService
	exporter Exporter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(
	cfg config.ServerConfig,
	users UserService,
	items ItemService,
	bookings BookingService,
	requests RequestService,
	exporter Exporter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		exporter: exporter,
		logger:   logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler builds the routed handler with middleware applied. Exposed
// separately so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/users", s.handleCreateUser)
	router.GET("/users", s.handleListUsers)
	router.GET("/users/:id", s.handleGetUser)
	router.PATCH("/users/:id", s.handleUpdateUser)
	router.DELETE("/users/:id", s.handleDeleteUser)

	// httprouter cannot mix static and wildcard segments, so /items/search
	// is resolved inside the :id handler.
	router.POST("/items", s.handleCreateItem)
	router.GET("/items", s.handleListItems)
	router.GET("/items/:id", s.handleGetItem)
	router.PATCH("/items/:id", s.handleUpdateItem)
	router.POST("/items/:id/comment", s.handleAddComment)

	router.POST("/bookings", s.handleCreateBooking)
	router.GET("/bookings", s.handleListBookingsByRequester)
	router.GET("/bookings/:id", s.handleGetBooking)
	router.PATCH("/bookings/:id", s.handleApproveBooking)
	router.GET("/bookings/:id/export", s.handleExportOwnerBookings)

	router.POST("/requests", s.handleCreateRequest)
	router.GET("/requests", s.handleListOwnRequests)
	router.GET("/requests/:id", s.handleGetRequest)

	return requestIDMiddleware(loggingMiddleware(s.logger, metricsMiddleware(router)))
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
