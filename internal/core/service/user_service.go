package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

// UserService implements account, session and avatar use-cases.
type UserService struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	notifier  ports.Notifier
	cache     ports.ImageCache
	jwtSecret string
	logger    zerolog.Logger
}

func NewUserService(users ports.UserRepository, tasks ports.TaskRepository, notifier ports.Notifier, cache ports.ImageCache, jwtSecret string, logger zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		tasks:     tasks,
		notifier:  notifier,
		cache:     cache,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (s *UserService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, string, error) {
	user := &domain.User{
		Name:  input.Name,
		Email: input.Email,
		Age:   input.Age,
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, "", err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	// The token embeds the generated user id, so it can only be issued
	// after the insert.
	token, err := s.issueToken(created)
	if err != nil {
		return nil, "", err
	}
	created.Tokens = []string{token}
	created, err = s.users.Update(ctx, created)
	if err != nil {
		return nil, "", err
	}

	s.notifier.SendWelcome(ctx, created.Email, created.Name)
	s.logger.Info().Str("user_id", created.ID).Msg("user signed up")

	return created, token, nil
}

// Login deliberately collapses "unknown email" and "wrong password" into the
// same ErrInvalidLogin so the response never reveals which part failed.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidLogin
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidLogin
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, token)

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", updated.ID).Int("sessions", len(updated.Tokens)).Msg("user logged in")
	return updated, token, nil
}

// Logout removes only the token used by the current request; other sessions
// stay valid.
func (s *UserService) Logout(ctx context.Context, user *domain.User, token string) error {
	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept

	_, err := s.users.Update(ctx, user)
	return err
}

func (s *UserService) LogoutAll(ctx context.Context, user *domain.User) error {
	user.Tokens = nil
	_, err := s.users.Update(ctx, user)
	return err
}

func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, update ports.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Age != nil {
		user.Age = *update.Age
	}
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}

	return s.users.Update(ctx, user)
}

// DeleteAccount cascades: the user's tasks are removed first, then the user
// record. The two writes are not atomic; a crash in between can leave the
// user without tasks but still present.
func (s *UserService) DeleteAccount(ctx context.Context, user *domain.User) (*domain.User, error) {
	deletedIDs, err := s.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	// The public image endpoints must stop serving the deleted data, so every
	// cache entry derived from this account goes too.
	s.cache.Invalidate(ctx, avatarCacheKey(user.ID))
	for _, taskID := range deletedIDs {
		s.cache.Invalidate(ctx, taskImageCacheKey(taskID))
	}

	s.notifier.SendCancellation(ctx, user.Email, user.Name)
	s.logger.Info().Str("user_id", user.ID).Int("tasks_deleted", len(deletedIDs)).Msg("account deleted")

	return user, nil
}

// UpdateAvatar stores png, already normalized by the transport layer, as the
// user's avatar.
func (s *UserService) UpdateAvatar(ctx context.Context, user *domain.User, png []byte) error {
	user.Avatar = png
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, avatarCacheKey(user.ID))
	return nil
}

// Avatar serves the public avatar lookup. Missing user and missing avatar
// are indistinguishable to the caller.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	key := avatarCacheKey(userID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return data, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNoImage
		}
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, domain.ErrNoImage
	}

	s.cache.Set(ctx, key, user.Avatar)
	return user.Avatar, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, user *domain.User) error {
	user.Avatar = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, avatarCacheKey(user.ID))
	return nil
}

// issueToken signs a new HS256 session token. The jti claim keeps tokens
// issued within the same second distinct. Tokens carry no expiry: a session
// ends when the token is removed from the user's token list.
func (s *UserService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"_id": user.ID,
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func avatarCacheKey(userID string) string {
	return "avatar:" + userID
}

// normalizeEmail applies the same canonical form used when storing emails.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
