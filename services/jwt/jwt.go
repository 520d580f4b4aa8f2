package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// AccessTokenValidity is how long an access token stays valid.
	AccessTokenValidity = time.Hour * 24
	// RefreshTokenValidity is how long a refresh token stays valid.
	RefreshTokenValidity = time.Hour * 24 * 7
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateTokenPair returns a signed access and refresh token for the user.
func GenerateTokenPair(email, secret string, id uint, roleName string) (string, string, error) {
	accessClaims := jwt.MapClaims{
		"email": email,
		"id":    id,
		"role":  roleName,
		"type":  "access",
		"exp":   time.Now().Add(AccessTokenValidity).Unix(),
	}
	accessToken, err := generateToken(accessClaims, secret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"email": email,
		"id":    id,
		"type":  "refresh",
		"exp":   time.Now().Add(RefreshTokenValidity).Unix(),
	}
	refreshToken, err := generateToken(refreshClaims, secret)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func generateToken(claims jwt.MapClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAndGetClaims parses the token and returns its claims when the
// signature and expiry check out.
func ValidateAndGetClaims(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
