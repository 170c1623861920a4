package dto

type LoginRequest struct {
	// Вход по email или username
	Email    string `json:"email" validate:"required_without=Username,max=254"`
	Username string `json:"username" validate:"required_without=Email,max=150"`
	Password string `json:"password" validate:"required"`
}

// Login возвращает идентификатор для поиска пользователя
func (r *LoginRequest) Login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserResponse `json:"user"`
}
