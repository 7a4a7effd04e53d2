package domain

import "errors"

// Domain errors
var (
	// Validation errors
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidEventName  = errors.New("event name is required")
	ErrInvalidVenue      = errors.New("event venue is required")
	ErrInvalidEventTime  = errors.New("event time is required")
	ErrInvalidTierName   = errors.New("tier name is required")
	ErrInvalidPrice      = errors.New("tier price must be greater than zero")
	ErrInvalidSupply     = errors.New("tier supply must be greater than zero")
	ErrInvalidRarity     = errors.New("invalid tier rarity")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrInvalidNonce      = errors.New("purchase nonce is required")
	ErrInvalidWeiAmount  = errors.New("invalid wei amount")
	ErrInvalidTierID     = errors.New("invalid tier id")

	// Authorization errors
	ErrNotAuthorized = errors.New("caller is not an authorized organizer")
	ErrNotEventOwner = errors.New("caller does not own this event")

	// State errors
	ErrEventNotDraft        = errors.New("event is no longer in draft")
	ErrEventNotPublished    = errors.New("event is not published")
	ErrEventAlreadyPublished = errors.New("event is already published")
	ErrEventEnded           = errors.New("event has ended")
	ErrNoTiers              = errors.New("event has no ticket tiers")

	// Capacity errors
	ErrSoldOut = errors.New("tier is sold out")

	// Payment errors
	ErrWrongPayment  = errors.New("payment does not match tier price")
	ErrPaymentFailed = errors.New("payment transfer failed")

	// Not found errors
	ErrEventNotFound     = errors.New("event not found")
	ErrTierNotFound      = errors.New("tier not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrOrganizerNotFound = errors.New("organizer not found")
)

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidEventName) ||
		errors.Is(err, ErrInvalidVenue) ||
		errors.Is(err, ErrInvalidEventTime) ||
		errors.Is(err, ErrInvalidTierName) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidSupply) ||
		errors.Is(err, ErrInvalidRarity) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidNonce) ||
		errors.Is(err, ErrInvalidWeiAmount) ||
		errors.Is(err, ErrInvalidTierID)
}

// IsAuthorizationError checks if the error is an authorization error
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrNotEventOwner)
}

// IsStateError checks if the error is a lifecycle state error
func IsStateError(err error) bool {
	return errors.Is(err, ErrEventNotDraft) ||
		errors.Is(err, ErrEventNotPublished) ||
		errors.Is(err, ErrEventAlreadyPublished) ||
		errors.Is(err, ErrEventEnded) ||
		errors.Is(err, ErrNoTiers)
}

// IsCapacityError checks if the error is a capacity error
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrSoldOut)
}

// IsPaymentError checks if the error is a payment error
func IsPaymentError(err error) bool {
	return errors.Is(err, ErrWrongPayment) ||
		errors.Is(err, ErrPaymentFailed)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTierNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrOrganizerNotFound)
}
