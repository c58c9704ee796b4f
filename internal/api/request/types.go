package request

import "github.com/mcoot/bodaform/internal/model"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest is the request body for creating a couple or admin account
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// SaveRequest is the request body for replacing a user's draft
type SaveRequest struct {
	Username string      `json:"username"`
	Data     model.Draft `json:"data"`
}

// NextRequest carries the answers of the current wizard step
type NextRequest struct {
	Data model.Draft `json:"data"`
}
