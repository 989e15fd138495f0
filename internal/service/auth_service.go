package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AuthService handles registration, login and session tokens. Sessions are
// stateless: the token is the user ID encrypted with a fernet key, and the
// key's TTL check bounds the session lifetime. No server-side session
// table exists, so rotating the key invalidates every outstanding session.
type AuthService struct {
	userRepo   *repository.UserRepository
	sessionKey *fernet.Key
	sessionTTL time.Duration
	log        *logrus.Entry
	now        func() time.Time
}

// NewAuthService creates a new AuthService. The key must be a
// base64-encoded 32-byte fernet key.
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionKey string,
	sessionTTL time.Duration,
	log *logrus.Logger,
) (*AuthService, error) {
	key, err := fernet.DecodeKey(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}
	return &AuthService{
		userRepo:   userRepo,
		sessionKey: key,
		sessionTTL: sessionTTL,
		log:        log.WithField("component", "auth-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// RegisterInput carries the sign-up fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	if !usernamePattern.MatchString(in.Username) {
		return fmt.Errorf("%w: username must be 3-20 characters of letters, digits, underscore or hyphen", apperrors.ErrInvalidInput)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email address", apperrors.ErrInvalidInput)
	}
	return validatePassword(in.Password)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidInput)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain upper and lower case letters and a digit", apperrors.ErrInvalidInput)
	}
	return nil
}

// Register creates a user account. Username and email must be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if err := in.validate(); err != nil {
		return model.User{}, err
	}

	if taken, err := s.userRepo.UsernameExists(ctx, in.Username); err != nil {
		return model.User{}, err
	} else if taken {
		return model.User{}, apperrors.ErrUsernameTaken
	}
	if taken, err := s.userRepo.EmailExists(ctx, in.Email); err != nil {
		return model.User{}, err
	} else if taken {
		return model.User{}, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Insert(ctx, &user); err != nil {
		return model.User{}, err
	}

	s.log.WithField("user", user.ID).Info("user registered")
	return user, nil
}

// Login checks credentials and issues a session token. The same error is
// returned for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == apperrors.ErrUserNotFound {
		return model.User{}, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}
	if !user.IsActive {
		return model.User{}, "", apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.WithError(err).Warn("failed to record last login")
	}
	user.LastLoginAt = now
	return user, token, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.User, error) {
	userID, err := s.verifyToken(token)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == apperrors.ErrUserNotFound {
		return model.User{}, apperrors.ErrInvalidSession
	}
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, apperrors.ErrInvalidSession
	}
	return user, nil
}

// ChangePassword rotates a user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperrors.ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthService) issueToken(userID string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(userID), s.sessionKey)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return string(token), nil
}

func (s *AuthService) verifyToken(token string) (string, error) {
	payload := fernet.VerifyAndDecrypt([]byte(token), s.sessionTTL, []*fernet.Key{s.sessionKey})
	if payload == nil {
		return "", apperrors.ErrInvalidSession
	}
	return string(payload), nil
}
