package handler

import "github.com/taskhub/task-manager/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type signupRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age"      validate:"gte=0"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// authResponse pairs a sanitized user with the session token issued for this
// signup/login. domain.User hides password, tokens, and avatar via its JSON tags.
type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// allowedProfileKeys is the exhaustive set of JSON keys a PATCH /users/me
// payload may carry; any other key rejects the whole request.
var allowedProfileKeys = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}
