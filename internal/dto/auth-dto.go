package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required,custom_email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,custom_email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         UserResponseDTO `json:"user"`
}
