package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
	"golang.org/x/crypto/bcrypt"
)

// SignUpMeta carries the profile attributes attached to a registration.
type SignUpMeta struct {
	Username   string
	Role       types.Role
	Department string
}

// IdentityGateway is the boundary the rest of the system sees: sign-in,
// sign-up, and session resolution. The provisioner and the HTTP layer
// both depend on this interface rather than the concrete service.
type IdentityGateway interface {
	SignIn(ctx context.Context, email, password string) (types.Session, string, error)
	SignUp(ctx context.Context, email, password string, meta SignUpMeta) (types.Session, error)
	SessionFromToken(token string) (types.Session, error)
}

// IdentityService implements the gateway over the user repository,
// bcrypt password hashes, and HS256 session tokens.
type IdentityService struct {
	repo     UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewIdentityService(repo UserRepository, jwtSecret string, tokenTTL time.Duration) *IdentityService {
	return &IdentityService{
		repo:     repo,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

type sessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignIn verifies credentials and returns the session projection plus
// a signed token. Missing fields are rejected before touching the
// store; a rejected credential never reveals which part was wrong.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (types.Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return types.Session{}, "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return types.Session{}, "", fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, "", ErrInvalidCredentials
		}
		return types.Session{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.Session{}, "", ErrInvalidCredentials
	}
	if user.Status != types.UserStatusActive {
		return types.Session{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return types.Session{}, "", err
	}

	// Best effort; a failed timestamp update must not block sign-in.
	_ = s.repo.UpdateLastLogin(ctx, user.ID, time.Now())

	return sessionFor(user), token, nil
}

// SignUp registers a new account with the given profile metadata.
// Duplicate email or username is reported per account, never fatally.
func (s *IdentityService) SignUp(ctx context.Context, email, password string, meta SignUpMeta) (types.Session, error) {
	email = strings.TrimSpace(email)
	username := strings.TrimSpace(meta.Username)
	if email == "" || username == "" {
		return types.Session{}, fmt.Errorf("%w: email and username are required", ErrValidation)
	}
	if password == "" {
		return types.Session{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	role := meta.Role
	if role == "" {
		role = types.RoleUser
	}
	if !role.Valid() {
		return types.Session{}, fmt.Errorf("%w: unknown role %q", ErrValidation, meta.Role)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.Session{}, fmt.Errorf("%w: email %s", ErrAlreadyExists, email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Session{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.Session{}, fmt.Errorf("%w: username %s", ErrAlreadyExists, username)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Session{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.Session{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		Name:         username,
		Role:         role,
		Status:       types.UserStatusActive,
		Department:   meta.Department,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return types.Session{}, err
	}

	return sessionFor(user), nil
}

// SessionFromToken resolves the session projection from a bearer
// token. Any parse or signature failure reads as "signed out".
func (s *IdentityService) SessionFromToken(tokenString string) (types.Session, error) {
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Session{}, ErrUnauthorized
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return types.Session{}, ErrUnauthorized
	}
	role, err := types.ParseRole(claims.Role)
	if err != nil {
		return types.Session{}, ErrUnauthorized
	}

	return types.Session{
		UserID:      userID,
		DisplayName: claims.Name,
		Role:        role,
	}, nil
}

func (s *IdentityService) issueToken(user types.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name: user.Name,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func sessionFor(user types.User) types.Session {
	return types.Session{
		UserID:      user.ID,
		DisplayName: user.Name,
		Role:        user.Role,
	}
}
