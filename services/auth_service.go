package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCodeLength     = 16
	confirmTokenLength = 32
	authCodeDuration   = 15 * time.Minute
)

// Token types accepted by VerifyToken.
const (
	TokenTypeSignup    = "signup"
	TokenTypeMagicLink = "magiclink"
	TokenTypeInvite    = "invite"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)

	// RequestMagicLink stamps a fresh one-time authorization code on the
	// account so it can be emailed as a passwordless sign-in link.
	RequestMagicLink(ctx context.Context, email string) (*MagicLinkResult, error)

	// ExchangeAuthCode trades a one-time authorization code for the user it
	// belongs to, consuming the code.
	ExchangeAuthCode(ctx context.Context, code string) (*models.User, error)

	// VerifyToken completes authentication via a single-use token hash
	// delivered out of band (email link), marking the email verified.
	VerifyToken(ctx context.Context, tokenHash, tokenType string) (*models.User, error)

	// CurrentUser resolves an authenticated session's user id to the user.
	CurrentUser(ctx context.Context, userID int) (*models.User, error)

	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult carries the one-time credential the handler embeds into
// the confirmation email.
type RegisterResult struct {
	User             *models.User
	ConfirmTokenHash string
}

// MagicLinkResult carries the one-time code the handler embeds into the
// sign-in email.
type MagicLinkResult struct {
	User     *models.User
	AuthCode string
}

type UpdateProfileInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	confirmTokenHash, err := generateSecureToken(confirmTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate confirmation token: %w", err)
	}

	user := &models.User{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            email,
		PasswordHash:     string(hashedPassword),
		ConfirmTokenHash: &confirmTokenHash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &RegisterResult{
		User:             user,
		ConfirmTokenHash: confirmTokenHash,
	}, nil
}

func (s *authService) RequestMagicLink(ctx context.Context, email string) (*MagicLinkResult, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	authCode, err := generateSecureToken(authCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate auth code: %w", err)
	}
	codeExpiry := time.Now().Add(authCodeDuration)
	user.AuthCode = &authCode
	user.AuthCodeExpiresAt = &codeExpiry

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("store auth code: %w", err)
	}

	user.PasswordHash = ""
	return &MagicLinkResult{User: user, AuthCode: authCode}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ExchangeAuthCode(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, ErrAuthCodeInvalid
	}

	user, err := s.userRepo.GetByAuthCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthCodeInvalid
		}
		return nil, fmt.Errorf("find user by auth code: %w", err)
	}

	if user.AuthCodeExpiresAt == nil || user.AuthCodeExpiresAt.Before(time.Now()) {
		return nil, ErrAuthCodeInvalid
	}

	// One-time: the code is gone whether or not the caller completes the
	// rest of the flow.
	if err := s.userRepo.ClearAuthCode(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("consume auth code: %w", err)
	}
	user.AuthCode = nil
	user.AuthCodeExpiresAt = nil

	return user, nil
}

func (s *authService) VerifyToken(ctx context.Context, tokenHash, tokenType string) (*models.User, error) {
	switch tokenType {
	case TokenTypeSignup, TokenTypeMagicLink, TokenTypeInvite:
	default:
		return nil, ErrAuthTokenInvalid
	}

	user, err := s.userRepo.GetByConfirmTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthTokenInvalid
		}
		return nil, fmt.Errorf("find user by token hash: %w", err)
	}

	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}
	user.EmailVerified = true
	user.ConfirmTokenHash = nil

	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	user.FirstName = firstName
	user.LastName = strings.TrimSpace(input.LastName)
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}

	user.PasswordHash = ""
	return user, nil
}
