package booking

import "errors"

// Error is a domain failure with a stable code that crosses the API boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrResourceUnavailable = &Error{Code: "RESOURCE_UNAVAILABLE", Message: "resource is missing or under maintenance"}
	ErrSlotTaken           = &Error{Code: "SLOT_TAKEN", Message: "this slot was just taken"}
	ErrAlreadyWaiting      = &Error{Code: "ALREADY_WAITING", Message: "already waiting for this resource type"}
	ErrInvalidState        = &Error{Code: "INVALID_STATE", Message: "booking is not in a cancellable state"}
	ErrNotFound            = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrInvalidRange        = &Error{Code: "INVALID_RANGE", Message: "end time must be after start time"}
	ErrInvalidInput        = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
)

// Code returns the domain code carried by err, or "" for infrastructure errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
