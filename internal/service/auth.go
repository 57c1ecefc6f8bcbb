package service

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"leadmonitor/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenLifetime = 24 * time.Hour

// AuthService authenticates the single operator account and issues JWTs
// for the dashboard API.
type AuthService interface {
	Login(username, password string) (string, time.Time, error)
	JWTSecret() []byte
}

type authService struct {
	username     string
	passwordHash []byte
	salt         []byte
	jwtSecret    []byte
	logger       *zap.Logger
}

// NewAuthService hashes the configured operator password with Argon2id
// and keeps only the hash in memory. An empty jwtSecret gets replaced by
// a random one, which invalidates tokens across restarts.
func NewAuthService(username, password, jwtSecret string, logger *zap.Logger) (AuthService, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		logger.Warn("No JWT secret configured, using a random per-process secret")
	}

	return &authService{
		username:     username,
		passwordHash: hashPassword(password, salt),
		salt:         salt,
		jwtSecret:    secret,
		logger:       logger,
	}, nil
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

func (s *authService) Login(username, password string) (string, time.Time, error) {
	candidate := hashPassword(password, s.salt)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare(candidate, s.passwordHash) == 1
	if !userOK || !passOK {
		s.logger.Warn("Failed login attempt", zap.String("username", username))
		return "", time.Time{}, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(tokenLifetime)
	claims := &models.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info("Operator logged in", zap.String("username", username))
	return signed, expirationTime, nil
}

func (s *authService) JWTSecret() []byte {
	return s.jwtSecret
}
