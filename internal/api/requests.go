package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type requestPayload struct {
	Description string `json:"description"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	authorID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body requestPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	request, err := s.requests.Create(r.Context(), authorID, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *Server) handleListOwnRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	authorID, ok := callerID(w, r)
	if !ok {
		return
	}

	views, err := s.requests.ListOwn(r.Context(), authorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetRequest also serves /requests/all, the everyone-else listing;
// httprouter cannot register a static sibling under the :id wildcard.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if ps.ByName("id") == "all" {
		from, size, ok := pageParams(w, r)
		if !ok {
			return
		}
		views, err := s.requests.ListOthers(r.Context(), caller, from, size)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
		return
	}

	requestID, ok := pathID(w, ps.ByName("id"), "request id")
	if !ok {
		return
	}

	view, err := s.requests.Get(r.Context(), caller, requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
