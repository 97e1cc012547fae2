package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"feedlink-backend/internal/models"
)

// AuthService mints and validates dashboard session tokens. Credentials are
// owned by the external backend; a token is only issued after the backend has
// accepted a login.
type AuthService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	// In-memory blacklist for revoked tokens
	blacklistedTokens map[string]time.Time
	blacklistMutex    sync.RWMutex
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret string, jwtExpirationSeconds int) *AuthService {
	return &AuthService{
		jwtSecret:         jwtSecret,
		jwtExpiration:     time.Duration(jwtExpirationSeconds) * time.Second,
		blacklistedTokens: make(map[string]time.Time),
	}
}

// JWTClaims represents session token claims
type JWTClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken generates a session token for a backend-confirmed user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "feedlink",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a session token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	if s.IsTokenBlacklisted(tokenString) {
		return nil, fmt.Errorf("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// GetTokenExpiryTime returns the expiry time of a token
func (s *AuthService) GetTokenExpiryTime(tokenString string) (time.Time, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// BlacklistToken adds a token to the blacklist until its natural expiry
func (s *AuthService) BlacklistToken(tokenString string) error {
	expiryTime, err := s.GetTokenExpiryTime(tokenString)
	if err != nil {
		// Unparseable tokens are still blacklisted with a default expiry
		expiryTime = time.Now().Add(s.jwtExpiration)
	}

	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()

	s.blacklistedTokens[tokenString] = expiryTime
	return nil
}

// IsTokenBlacklisted checks if a token is blacklisted
func (s *AuthService) IsTokenBlacklisted(tokenString string) bool {
	s.blacklistMutex.RLock()
	expiryTime, exists := s.blacklistedTokens[tokenString]
	s.blacklistMutex.RUnlock()

	if !exists {
		return false
	}

	if time.Now().After(expiryTime) {
		s.blacklistMutex.Lock()
		delete(s.blacklistedTokens, tokenString)
		s.blacklistMutex.Unlock()
		return false
	}

	return true
}

// CleanupExpiredTokens removes expired tokens from the blacklist
func (s *AuthService) CleanupExpiredTokens() {
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()

	now := time.Now()
	for token, expiryTime := range s.blacklistedTokens {
		if now.After(expiryTime) {
			delete(s.blacklistedTokens, token)
		}
	}
}
