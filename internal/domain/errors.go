package domain

import "errors"

// Sentinel errors surfaced by services. The HTTP layer maps them to response
// codes in one place; everything else tests with errors.Is.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRequestNotFound = errors.New("item request not found")

	// ErrEmailTaken reports a duplicate email on user create/update.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidTimeRange covers zero-length and inverted booking intervals.
	ErrInvalidTimeRange = errors.New("invalid booking time range")

	// ErrItemUnavailable blocks bookings of items whose owner switched
	// availability off.
	ErrItemUnavailable = errors.New("item is not available for booking")

	// ErrSelfBooking rejects owners booking their own items.
	ErrSelfBooking = errors.New("owner cannot book own item")

	// ErrTimeConflict reports an interval collision with an existing booking.
	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	// ErrStatusConflict rejects approve/reject of a booking that already
	// left WAITING.
	ErrStatusConflict = errors.New("booking status does not allow this transition")

	// ErrUnknownState reports an unrecognized state token in listing queries.
	ErrUnknownState = errors.New("unknown booking state")

	// ErrInvalidPagination rejects from < 0 or size < 1.
	ErrInvalidPagination = errors.New("invalid pagination parameters")

	// ErrCommentNotAllowed rejects comments from users who never finished a
	// booking of the item.
	ErrCommentNotAllowed = errors.New("commenting requires a finished booking of the item")

	// ErrValidation covers malformed create/update payloads (missing name,
	// description, availability flag and the like).
	ErrValidation = errors.New("invalid request parameters")
)
