package api

import (
	"encoding/json"
	"net/http"

	"shareit/internal/service"

	"github.com/julienschmidt/httprouter"
)

type itemPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   int64   `json:"request_id"`
}

type commentPayload struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body itemPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var name, description string
	if body.Name != nil {
		name = *body.Name
	}
	if body.Description != nil {
		description = *body.Description
	}

	item, err := s.items.Create(r.Context(), ownerID, name, description, body.Available, body.RequestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, ps.ByName("id"), "item id")
	if !ok {
		return
	}

	var body itemPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	item, err := s.items.Update(r.Context(), ownerID, itemID, service.ItemUpdate{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleGetItem also serves /items/search; httprouter cannot register a
// static sibling under the :id wildcard.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == "search" {
		s.handleSearchItems(w, r)
		return
	}

	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, ps.ByName("id"), "item id")
	if !ok {
		return
	}

	view, err := s.items.Get(r.Context(), itemID, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	views, err := s.items.ListByOwner(r.Context(), ownerID, from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	from, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	items, err := s.items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	authorID, ok := callerID(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, ps.ByName("id"), "item id")
	if !ok {
		return
	}

	var body commentPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	comment, err := s.items.AddComment(r.Context(), authorID, itemID, body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
