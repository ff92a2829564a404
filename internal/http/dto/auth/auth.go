// Package auth contiene DTOs para endpoints de autenticación.
package auth

// LoginRequest representa la solicitud de login con credenciales de cliente.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest representa la solicitud de alta de cuenta.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// RefreshRequest representa la solicitud de renovación de sesión.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse representa una sesión emitida (login/signup/refresh).
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	IsNewUser    bool   `json:"is_new_user,omitempty"`
}
