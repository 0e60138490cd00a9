package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateToken(subject, role string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}

// Claims carried by dashboard access tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
