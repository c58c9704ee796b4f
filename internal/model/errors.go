package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")

	// Identity errors
	ErrInvalidIdentity = errors.New("invalid identity")

	// Draft errors
	ErrInvalidDraft = errors.New("invalid draft")
	ErrUnknownField = errors.New("unknown field")

	// Catalog errors
	ErrStepOutOfRange = errors.New("step index out of range")
)
