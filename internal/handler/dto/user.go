// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/hpnchanel/userapi/internal/model"
)

// CreateUserRequest represents the request body for creating a user.
// Pointers distinguish absent fields from empty ones so the validator
// can report missing data precisely.
type CreateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdateUserRequest represents the request body for a partial update.
// Only name and email are ever accepted on input; id and created_at
// are output-only.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageResponse carries a human-readable confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC(),
	}
}

// ToUserListResponse converts a slice of User models to response DTOs.
// The result is never nil so an empty store serializes as [].
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, *ToUserResponse(user))
	}
	return responses
}
