package domain

import "errors"

// Common domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrInvalidBloodType = errors.New("invalid blood type")
)

// Inventory errors
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrCapacityExceeded      = errors.New("stock would exceed maximum capacity")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInsufficientAvailable = errors.New("insufficient available stock")
	ErrOverRelease           = errors.New("release exceeds reserved stock")
	ErrConcurrencyConflict   = errors.New("concurrent update conflict")
)

// Donation errors
var (
	ErrDonationNotFound       = errors.New("donation not found")
	ErrInvalidStateTransition = errors.New("invalid donation state transition")
)

// User errors
var ErrUserNotFound = errors.New("user not found")
