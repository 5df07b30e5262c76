package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrPartnerNotFound        = errors.New("partner not found")
	ErrPastDate               = errors.New("date is in the past")
	ErrDateBooked             = errors.New("date is already booked")
	ErrDuplicateOverride      = errors.New("override already exists for date")
	ErrUnavailable            = errors.New("partner unavailable for requested dates")
)

func isPartnerRole(role string) bool {
	return role == "guide" || role == "driver"
}
