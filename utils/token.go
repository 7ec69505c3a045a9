package authUtils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// GenerateAdminToken mints a short-lived operator token for the admin API.
func GenerateAdminToken(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour * 72).Unix(),
	})

	return token.SignedString([]byte(secret))
}
