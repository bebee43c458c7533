package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/logger"
	"foodgram/internal/models"
	"foodgram/internal/permissions"
	"foodgram/internal/repositories"
)

// ErrInvalidToken is returned for malformed, expired, revoked or orphaned tokens.
var ErrInvalidToken = errors.New("invalid token")

// RegisterInput is the sign-up request.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput is the token login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordInput is the password change request.
type SetPasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	denylist  repositories.TokenDenylist
	events    EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, denylist repositories.TokenDenylist, events EventPublisher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		denylist:  denylist,
		events:    events,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// RegisterUser validates the sign-up request, hashes the password and saves the user.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	verr := &ValidationError{}
	if err := ValidateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
	}
	if in.Username == models.ReservedUsername {
		verr.Add("username", fmt.Sprintf("Username %q is not allowed.", models.ReservedUsername))
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if taken, err := s.exists(ctx, s.userRepo.GetByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, newValidationError("username", "A user with that username already exists.")
	}
	if taken, err := s.exists(ctx, s.userRepo.GetByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, newValidationError("email", "A user with that email already exists.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publishEvent(ctx, s.events, EventUserRegistered, map[string]any{"id": user.ID, "username": user.Username})
	return user, nil
}

func (s *AuthService) exists(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value string) (bool, error) {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LoginUser authenticates a user by email and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, in LoginInput) (string, error) {
	if err := ValidateStruct(in); err != nil {
		return "", err
	}
	invalid := newValidationError("non_field_errors", "Unable to log in with provided credentials.")

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", invalid
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", invalid
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		logger.Log.Debugw("token validation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Authenticate resolves the user a token was issued to. Revoked tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if jti, _ := claims["jti"].(string); jti != "" {
		revoked, err := s.denylist.IsRevoked(ctx, jti)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
		}
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	user, err := s.userRepo.GetByID(ctx, uint(rawID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return fmt.Errorf("%w: token cannot be revoked", ErrInvalidToken)
	}

	ttl := s.tokenTTL
	if exp, ok := claims["exp"].(float64); ok {
		ttl = time.Until(time.Unix(int64(exp), 0))
	}
	if err := s.denylist.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// SetPassword replaces the user's password after checking the current one.
func (s *AuthService) SetPassword(ctx context.Context, user *models.User, in SetPasswordInput) error {
	if err := permissions.AuthenticatedOnly(user); err != nil {
		return err
	}
	if err := ValidateStruct(in); err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return newValidationError("current_password", "Invalid password.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	user.Password = string(hashedPassword)
	return nil
}
