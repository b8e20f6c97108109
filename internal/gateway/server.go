package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const headerUserID = "X-Sharer-User-Id"

// Server is the validating gateway: it checks identity headers, DTO shape,
// state tokens and pagination, rate-limits per user, and forwards everything
// that passes to the core service.
type Server struct {
	cfg      config.GatewayConfig
	limiter  ratelimit.Limiter
	proxy    *proxy
	validate *validator.Validate
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(cfg config.GatewayConfig, limiter ratelimit.Limiter, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		limiter:  limiter,
		proxy:    newProxy(cfg.ServerURL, logger),
		validate: validator.New(),
		logger:   logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      35 * time.Second,
	}
	return s
}

// Handler builds the routed gateway handler; exposed for httptest.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/users", s.withBody(s.validateCreateUser))
	router.PATCH("/users/:id", s.withBody(s.validateUpdateUser))
	router.GET("/users", s.passThrough)
	router.GET("/users/:id", s.passThrough)
	router.DELETE("/users/:id", s.passThrough)

	router.POST("/items", s.withUserAndBody(s.validateCreateItem))
	router.PATCH("/items/:id", s.withUserAndBody(s.validateUpdateItem))
	router.GET("/items", s.withUser(s.checkPagination))
	router.GET("/items/:id", s.withUser(nil))
	router.POST("/items/:id/comment", s.withUserAndBody(s.validateComment))

	router.POST("/bookings", s.withUserAndBody(s.validateCreateBooking))
	router.PATCH("/bookings/:id", s.withUser(s.checkApprovedParam))
	router.GET("/bookings", s.withUser(s.checkListingParams))
	router.GET("/bookings/:id", s.withUser(s.checkListingParams))
	router.GET("/bookings/:id/export", s.withUser(nil))

	router.POST("/requests", s.withUserAndBody(s.validateCreateRequest))
	router.GET("/requests", s.withUser(nil))
	router.GET("/requests/:id", s.withUser(s.checkPagination))

	return s.rateLimitMiddleware(router)
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Str("upstream", s.cfg.ServerURL).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(headerUserID)
		if key == "" {
			key = r.RemoteAddr
		}

		allowed, err := s.limiter.Allow(r.Context(), key)
		if err != nil {
			s.logger.Error().Err(err).Msg("rate limiter unavailable, letting request through")
		} else if !allowed {
			writeGatewayError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type bodyCheck func(w http.ResponseWriter, r *http.Request, body []byte) bool
type queryCheck func(w http.ResponseWriter, r *http.Request) bool

// withBody reads and validates the payload, then forwards it verbatim.
func (s *Server) withBody(check bodyCheck) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeGatewayError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if !check(w, r, body) {
			return
		}
		s.proxy.forward(w, r, body)
	}
}

// withUser additionally requires a well-formed identity header.
func (s *Server) withUser(check queryCheck) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if !s.checkUserHeader(w, r) {
			return
		}
		if check != nil && !check(w, r) {
			return
		}
		s.proxy.forward(w, r, nil)
	}
}

func (s *Server) withUserAndBody(check bodyCheck) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if !s.checkUserHeader(w, r) {
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeGatewayError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if !check(w, r, body) {
			return
		}
		s.proxy.forward(w, r, body)
	}
}

func (s *Server) passThrough(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.proxy.forward(w, r, nil)
}

func (s *Server) checkUserHeader(w http.ResponseWriter, r *http.Request) bool {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		writeGatewayError(w, http.StatusBadRequest, headerUserID+" header is required")
		return false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
		writeGatewayError(w, http.StatusBadRequest, headerUserID+" header must be a positive integer")
		return false
	}
	return true
}

func (s *Server) validateCreateUser(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto createUserDTO
	return s.decodeAndValidate(w, body, &dto)
}

func (s *Server) validateUpdateUser(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto updateUserDTO
	return s.decodeAndValidate(w, body, &dto)
}

func (s *Server) validateCreateItem(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto createItemDTO
	return s.decodeAndValidate(w, body, &dto)
}

func (s *Server) validateUpdateItem(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto updateItemDTO
	return s.decodeAndValidate(w, body, &dto)
}

func (s *Server) validateComment(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto createCommentDTO
	return s.decodeAndValidate(w, body, &dto)
}

func (s *Server) validateCreateRequest(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto createRequestDTO
	return s.decodeAndValidate(w, body, &dto)
}

// validateCreateBooking layers the time-window checks over tag validation.
func (s *Server) validateCreateBooking(w http.ResponseWriter, r *http.Request, body []byte) bool {
	var dto createBookingDTO
	if !s.decodeAndValidate(w, body, &dto) {
		return false
	}

	now := time.Now()
	if dto.Start.Before(now.Add(-time.Minute)) {
		writeGatewayError(w, http.StatusBadRequest, "start must not be in the past")
		return false
	}
	if !dto.End.After(dto.Start) {
		writeGatewayError(w, http.StatusBadRequest, "end must be after start")
		return false
	}
	return true
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, body []byte, dto interface{}) bool {
	if err := json.Unmarshal(body, dto); err != nil {
		writeGatewayError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dto); err != nil {
		writeGatewayError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) checkApprovedParam(w http.ResponseWriter, r *http.Request) bool {
	approved := r.URL.Query().Get("approved")
	if approved != "true" && approved != "false" {
		writeGatewayError(w, http.StatusBadRequest, "approved query param must be true or false")
		return false
	}
	return true
}

func (s *Server) checkPagination(w http.ResponseWriter, r *http.Request) bool {
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		if v, err := strconv.Atoi(raw); err != nil || v < 0 {
			writeGatewayError(w, http.StatusBadRequest, "from must be a non-negative integer")
			return false
		}
	}
	if raw := query.Get("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err != nil || v < 1 {
			writeGatewayError(w, http.StatusBadRequest, "size must be a positive integer")
			return false
		}
	}
	return true
}

// checkListingParams rejects unknown state tokens and bad pagination before
// the request leaves the gateway.
func (s *Server) checkListingParams(w http.ResponseWriter, r *http.Request) bool {
	if !s.checkPagination(w, r) {
		return false
	}
	if token := r.URL.Query().Get("state"); token != "" {
		if _, ok := models.ParseListFilter(token); !ok {
			writeGatewayError(w, http.StatusBadRequest, "Unknown state: "+token)
			return false
		}
	}
	return true
}

func writeGatewayError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
