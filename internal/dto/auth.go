package dto

type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Verified    bool   `json:"verified"`
	CreatedAt   string `json:"createdAt"`
}

type RegisterResponse struct {
	User UserResponse `json:"user"`
	// EmailSent is false when the verification email could not be delivered;
	// the account is still created and the token can be re-issued later.
	EmailSent bool `json:"emailSent"`
}

// UnverifiedLoginResponse is returned when credentials check out but the
// email is not verified yet, so the client can offer to resend the link.
type UnverifiedLoginResponse struct {
	Message           string `json:"message"`
	NeedsVerification bool   `json:"needsVerification"`
	Email             string `json:"email"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         UserResponse `json:"user"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}
