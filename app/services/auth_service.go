package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/auth"
	"github.com/ultranet/catalog/pkg/logger"
)

// ErrBadCredentials is the message for any failed login.
const ErrBadCredentials = "These credentials do not match our records."

// Token is an issued API bearer token.
type Token struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// AuthService checks credentials and issues API tokens.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

// Attempt validates the credentials and checks the password. Unknown emails
// and wrong passwords fail the same way.
func (s *AuthService) Attempt(ctx context.Context, in requests.Credentials) (models.User, error) {
	if err := requests.CheckStruct(&in); err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(in.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.WithCtx(ctx).Info("login failed", "reason", "unknown email")
		return models.User{}, apperr.FieldError("email", ErrBadCredentials)
	}
	if err != nil {
		return models.User{}, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		logger.WithCtx(ctx).Info("login failed", "reason", "bad password", "user_id", user.ID)
		return models.User{}, apperr.FieldError("email", ErrBadCredentials)
	}
	return user, nil
}

// IssueToken signs a bearer token for user.
func (s *AuthService) IssueToken(user models.User) (Token, error) {
	token, ttl, err := auth.IssueToken(user.ID, user.Email)
	if err != nil {
		return Token{}, apperr.Internal(err)
	}
	return Token{Token: token, TokenType: "Bearer", ExpiresIn: int64(ttl / time.Second)}, nil
}

// User loads a user by id.
func (s *AuthService) User(ctx context.Context, id uint) (models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, apperr.Unauthorized("Unauthenticated.").WithError(err)
	}
	return u, err
}

// CreateUser hashes password and upserts the user by email.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string) (models.User, error) {
	if name == "" || email == "" || password == "" {
		return models.User{}, apperr.BadRequest("name, email and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{Name: name, Email: strings.ToLower(email), Password: hash}
	if err := s.users.Upsert(ctx, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
