package ports

import (
	"context"

	"github.com/taskhub/task-manager/internal/core/domain"
)

// SignupInput carries the fields accepted on account creation.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService defines use-case operations on accounts and sessions.
type UserService interface {
	// Signup validates and creates the account, issues the first session
	// token, and triggers a best-effort welcome email.
	Signup(ctx context.Context, input SignupInput) (*domain.User, string, error)
	// Login verifies credentials and appends a fresh session token.
	// Unknown email and wrong password both yield domain.ErrInvalidLogin.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Logout invalidates only the token used by the current request.
	Logout(ctx context.Context, user *domain.User, token string) error
	// LogoutAll invalidates every session token of the user.
	LogoutAll(ctx context.Context, user *domain.User) error
	// UpdateProfile applies a partial update, re-hashing the password when
	// it changed, and persists through full validation.
	UpdateProfile(ctx context.Context, user *domain.User, update ProfileUpdate) (*domain.User, error)
	// DeleteAccount removes the user's tasks, then the user record, and
	// triggers a best-effort cancellation email. Returns the deleted user.
	DeleteAccount(ctx context.Context, user *domain.User) (*domain.User, error)

	// UpdateAvatar stores png, already normalized to 250x250 by the
	// transport layer, as the user's avatar.
	UpdateAvatar(ctx context.Context, user *domain.User, png []byte) error
	// Avatar returns the stored avatar PNG for any user id.
	// Returns domain.ErrNoImage when the user or the avatar is missing.
	Avatar(ctx context.Context, userID string) ([]byte, error)
	DeleteAvatar(ctx context.Context, user *domain.User) error
}
