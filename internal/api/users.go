package api

import (
	"encoding/json"
	"net/http"

	"shareit/internal/service"

	"github.com/julienschmidt/httprouter"
)

type userPayload struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body userPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var name, email string
	if body.Name != nil {
		name = *body.Name
	}
	if body.Email != nil {
		email = *body.Email
	}
	var chatID int64
	if body.TelegramChatID != nil {
		chatID = *body.TelegramChatID
	}

	user, err := s.users.Create(r.Context(), name, email, chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps.ByName("id"), "user id")
	if !ok {
		return
	}

	var body userPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := s.users.Update(r.Context(), id, service.UserUpdate{
		Name:           body.Name,
		Email:          body.Email,
		TelegramChatID: body.TelegramChatID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps.ByName("id"), "user id")
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps.ByName("id"), "user id")
	if !ok {
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
