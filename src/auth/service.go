// Package auth creates and checks credentials and issues the bearer tokens
// the API accepts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/db"
	"fintrack-server/src/models"
	"fintrack-server/src/util"
)

const DefaultTokenTTL = 168 * time.Hour

// Identity is what a verified token says about its bearer.
type Identity struct {
	ID       int64
	Username string
}

type Service struct {
	users    db.UserStore
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users db.UserStore, secret []byte, opts ...Option) *Service {
	s := &Service{
		users:    users,
		secret:   secret,
		ttl:      DefaultTokenTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup stores a new credential and returns a token for it. An existing
// username is left untouched and reported as ErrDuplicateUsername.
func (s *Service) Signup(ctx context.Context, creds models.Credentials) (*models.User, string, error) {
	if err := util.ValidateCredentials(creds); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, creds.Username, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks creds against the stored hash. An unknown username and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.User, string, error) {
	if err := util.ValidateCredentials(creds); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify parses an HS256 token and returns the identity it carries. Any
// failure, including expiry, is ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.ErrInvalidToken
	}
	// Numbers decode as float64 from the JSON payload
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, models.ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, models.ErrInvalidToken
	}
	return &Identity{ID: int64(userID), Username: username}, nil
}

func (s *Service) issue(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}
