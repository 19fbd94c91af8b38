package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned when a token fails validation
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token has expired
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the JWT claims carried by broker access tokens.
type Claims struct {
	DisplayName string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed access tokens.
type TokenVerifier struct {
	signingKey []byte
	issuer     string
}

// NewTokenVerifier creates a TokenVerifier
func NewTokenVerifier(signingKey, issuer string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey), issuer: issuer}
}

// Verify parses and validates a token string, returning the user context it
// carries.
func (v *TokenVerifier) Verify(tokenString string) (*UserContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &UserContext{
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Roles:       claims.Roles,
	}, nil
}

// TokenIssuer mints HMAC-signed access tokens for operators and service
// integrations.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewTokenIssuer creates a TokenIssuer
func NewTokenIssuer(signingKey, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey), issuer: issuer, ttl: ttl}
}

// Issue signs a token for the given user.
func (i *TokenIssuer) Issue(userID, displayName, email string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		DisplayName: displayName,
		Email:       email,
		Roles:       roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
