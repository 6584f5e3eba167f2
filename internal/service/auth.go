package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xiaolu2333/watchlist/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminName is the display name given to an owner created by SetAdmin.
const DefaultAdminName = "Admin"

// AuthService handles the owner account, login, and session tokens.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService. Tokens expire after sessionTTL;
// a non-positive value falls back to 24 hours.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL returns how long issued tokens stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login checks the credentials against the single owner account and returns
// a signed JWT. Every mismatch is reported as ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	owner, err := s.users.First(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get owner: %w", err)
	}

	if !owner.HasCredentials() || owner.Username != username {
		return "", domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	token, err := s.generateJWT(owner)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}

	return token, nil
}

// ValidateToken parses and validates a JWT token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	return userID, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Owner returns the watchlist owner, or ErrNotFound before one exists.
func (s *AuthService) Owner(ctx context.Context) (*domain.User, error) {
	return s.users.First(ctx)
}

// SetAdmin sets the login credentials of the owner, creating the owner when
// the database has no user yet. It reports whether a user was created.
func (s *AuthService) SetAdmin(ctx context.Context, username, password string) (*domain.User, bool, error) {
	username = strings.TrimSpace(username)
	if err := ValidateCredentials(username, password); err != nil {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	owner, err := s.users.First(ctx)
	switch {
	case err == nil:
		owner.Username = username
		owner.PasswordHash = string(hash)
		if err := s.users.Update(ctx, owner); err != nil {
			return nil, false, fmt.Errorf("update owner: %w", err)
		}
		return owner, false, nil
	case errors.Is(err, domain.ErrNotFound):
		owner = &domain.User{
			Name:         DefaultAdminName,
			Username:     username,
			PasswordHash: string(hash),
		}
		if err := s.users.Create(ctx, owner); err != nil {
			return nil, false, fmt.Errorf("create owner: %w", err)
		}
		return owner, true, nil
	default:
		return nil, false, fmt.Errorf("get owner: %w", err)
	}
}

// EnsureOwner creates an owner without credentials when no user exists.
// An existing owner is returned unchanged.
func (s *AuthService) EnsureOwner(ctx context.Context, name string) (*domain.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	owner, err := s.users.First(ctx)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	owner = &domain.User{Name: strings.TrimSpace(name)}
	if err := s.users.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return owner, nil
}

// UpdateName changes the display name shown in the page title.
func (s *AuthService) UpdateName(ctx context.Context, userID int64, name string) (*domain.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateCredentials checks an administrator login name and password
// without touching storage.
func ValidateCredentials(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if runeLen(username) > domain.MaxUsernameLength {
		return fmt.Errorf("%w: username must be %d characters or fewer", domain.ErrInvalidInput, domain.MaxUsernameLength)
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if runeLen(name) > domain.MaxNameLength {
		return fmt.Errorf("%w: name must be %d characters or fewer", domain.ErrInvalidInput, domain.MaxNameLength)
	}
	return nil
}
