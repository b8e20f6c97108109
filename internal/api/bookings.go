package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type bookingPayload struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body bookingPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	booking, err := s.bookings.Create(r.Context(), requesterID, body.ItemID, body.Start, body.End)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleApproveBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, ps.ByName("id"), "booking id")
	if !ok {
		return
	}

	approvedRaw := r.URL.Query().Get("approved")
	if approvedRaw != "true" && approvedRaw != "false" {
		writeBadRequest(w, "approved query param must be true or false")
		return
	}

	booking, err := s.bookings.Approve(r.Context(), ownerID, bookingID, approvedRaw == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleGetBooking also serves /bookings/owner, the owner-side listing;
// httprouter cannot register a static sibling under the :id wildcard.
func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == "owner" {
		s.handleListBookingsByOwner(w, r)
		return
	}

	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, ps.ByName("id"), "booking id")
	if !ok {
		return
	}

	booking, err := s.bookings.Get(r.Context(), caller, bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookingsByRequester(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListByRequester(r.Context(), caller, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleListBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListByOwner(r.Context(), caller, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// handleExportOwnerBookings serves GET /bookings/owner/export. Any other
// :id value has no export resource.
func (s *Server) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != "owner" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	data, err := s.exporter.OwnerBookings(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings-%d.xlsx", caller))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
