package authapi

import "halalai/cmd/identity"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

// authResponse is the shared success envelope of all three endpoints.
type authResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toAuthResponse(token string, u identity.User) authResponse {
	return authResponse{
		Token:    token,
		Type:     "Bearer",
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
