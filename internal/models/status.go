package models

import "strings"

// BookingStatus is the persisted state of a booking. It never holds the
// query-only tokens (ALL/CURRENT/PAST/FUTURE); those live in ListFilter.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type filterKind int

const (
	filterAll filterKind = iota
	filterCurrent
	filterPast
	filterFuture
	filterByStatus
)

// ListFilter selects bookings in read queries. It is resolved against "now"
// at query time and is never persisted.
type ListFilter struct {
	kind   filterKind
	status BookingStatus
}

var (
	FilterAll     = ListFilter{kind: filterAll}
	FilterCurrent = ListFilter{kind: filterCurrent}
	FilterPast    = ListFilter{kind: filterPast}
	FilterFuture  = ListFilter{kind: filterFuture}
)

func FilterByStatus(status BookingStatus) ListFilter {
	return ListFilter{kind: filterByStatus, status: status}
}

// ParseListFilter resolves a state token from the query string. Unknown
// tokens are a client error, reported by the caller as such.
func ParseListFilter(token string) (ListFilter, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "", "ALL":
		return FilterAll, true
	case "CURRENT":
		return FilterCurrent, true
	case "PAST":
		return FilterPast, true
	case "FUTURE":
		return FilterFuture, true
	case string(StatusWaiting):
		return FilterByStatus(StatusWaiting), true
	case string(StatusApproved):
		return FilterByStatus(StatusApproved), true
	case string(StatusRejected):
		return FilterByStatus(StatusRejected), true
	}
	return ListFilter{}, false
}

func (f ListFilter) IsAll() bool      { return f.kind == filterAll }
func (f ListFilter) IsCurrent() bool  { return f.kind == filterCurrent }
func (f ListFilter) IsPast() bool     { return f.kind == filterPast }
func (f ListFilter) IsFuture() bool   { return f.kind == filterFuture }
func (f ListFilter) IsByStatus() bool { return f.kind == filterByStatus }

// Status returns the persisted status this filter selects; meaningful only
// when IsByStatus reports true.
func (f ListFilter) Status() BookingStatus { return f.status }

func (f ListFilter) String() string {
	switch f.kind {
	case filterCurrent:
		return "CURRENT"
	case filterPast:
		return "PAST"
	case filterFuture:
		return "FUTURE"
	case filterByStatus:
		return string(f.status)
	default:
		return "ALL"
	}
}
