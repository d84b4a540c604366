package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
)

const (
	accessCookieName  = "access"
	refreshCookieName = "refresh"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type tokenManager interface {
	GeneratePair(ctx context.Context, user models.User) (models.TokenPair, error)
	UseRefresh(ctx context.Context, refresh string) (models.RefreshToken, error)
	ParseAccess(ctx context.Context, access string) (uuid.UUID, error)
}

type userService interface {
	CreateUser(ctx context.Context, username string, email string, password string) (models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type Config struct {
	// Hasher to use during login, DefaultHasher if nil
	Hasher PasswordHasher
}

type AuthService struct {
	// Manager to issue token pairs (access and refresh)
	tokens tokenManager

	// hasher to compare user passwords
	hasher PasswordHasher

	// Service to create and read users
	users userService
}

func NewService(cfg Config, tokens tokenManager, users userService) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if tokens == nil || users == nil {
		return nil, errors.New("token manager and user service must not be nil")
	}

	return &AuthService{
		tokens: tokens,
		hasher: hasher,
		users:  users,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.TokenPair, error) {
	user, err := s.users.CreateUser(ctx, username, email, password)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.tokens.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.users.GetUser(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

// Auth resolves the user from the request: Authorization Bearer header
// first, access cookie second
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access := ""

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		access = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := r.Cookie(accessCookieName); err == nil {
		access = cookie.Value
	}

	if access == "" {
		return models.User{}, apperrors.ErrUserNotFound
	}

	userID, err := s.tokens.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, err
	}

	return s.users.GetUser(ctx, userID)
}

// SetTokens writes the token pair as http-only cookies
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.Access.Value,
		Expires:  pair.Access.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Expires:  pair.Refresh.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetRefresh extracts the refresh token from the request cookie
func (s *AuthService) GetRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", apperrors.ErrRefreshTokenNotFound
	}
	return cookie.Value, nil
}
