package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Email    string `json:"email" validate:"required,custom_email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
	Role     string `json:"role,omitempty" validate:"omitempty,user_role"`
}

type UpdateUserDTO struct {
	Email    null.String `json:"email" validate:"omitempty,custom_email"`
	Password null.String `json:"password" validate:"omitempty,min=6,max=72"`
	FullName null.String `json:"full_name" validate:"omitempty,min=2,max=200"`
	Role     null.String `json:"role" validate:"omitempty,user_role"`
	IsActive null.Bool   `json:"is_active"`
}

type UserResponseDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
