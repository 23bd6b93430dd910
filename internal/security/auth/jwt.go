package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/inventario/internal/domain"
)

// Claims carries the authenticated identity inside the session token
type Claims struct {
	TenantID string `json:"tenant_id"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity reconstructs the domain identity from the claims
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		Login:    c.Login,
		Name:     c.Name,
		Role:     c.Role,
		TenantID: c.TenantID,
	}
}

// TokenManager signs and validates session tokens
type TokenManager struct {
	secret string
	issuer string
}

// NewTokenManager creates a token manager with the given HMAC secret
func NewTokenManager(secret, issuer string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "inventario"
	}
	return &TokenManager{secret: secret, issuer: issuer}
}

// GenerateToken issues a session token for the identity
func (tm *TokenManager) GenerateToken(identity domain.Identity, expiresIn time.Duration) (string, error) {
	if identity.TenantID == "" || identity.Login == "" {
		return "", fmt.Errorf("tenant id and login required")
	}
	now := time.Now()
	claims := Claims{
		TenantID: identity.TenantID,
		Login:    identity.Login,
		Name:     identity.Name,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

// ValidateToken parses a session token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
