package dto

import (
	"time"

	"github.com/custor/portal-api/internal/models"
)

// UserDTO is the short user shape returned by login and user listings.
type UserDTO struct {
	UserKey uint64 `json:"userKey"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// UserDetailDTO adds names to UserDTO.
type UserDetailDTO struct {
	UserKey   uint64 `json:"userKey"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// RoleDTO represents a role in API responses
type RoleDTO struct {
	RoleKey     uint64 `json:"roleKey"`
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// MessageResponse carries a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

type UserMessageResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

// CurrentUserDTO echoes the identity carried by the caller's token.
type CurrentUserDTO struct {
	UserKey  uint64 `json:"userKey"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
	IsMentor bool   `json:"isMentor"`
	IsIntern bool   `json:"isIntern"`
}

// ToUserDTO converts a User model to UserDTO. Role must be preloaded.
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		UserKey: user.ID,
		Email:   user.Email,
		Role:    user.Role.Name,
	}
}

func ToUserDetailDTO(user models.User) UserDetailDTO {
	return UserDetailDTO{
		UserKey:   user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role.Name,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func ToUserDetailDTOs(users []models.User) []UserDetailDTO {
	out := make([]UserDetailDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDetailDTO(u)
	}
	return out
}

func ToRoleDTOs(roles []models.Role) []RoleDTO {
	out := make([]RoleDTO, len(roles))
	for i, r := range roles {
		out[i] = RoleDTO{RoleKey: r.ID, RoleName: r.Name, Description: r.Description}
	}
	return out
}
