package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateSessionToken(sessionID string) (string, error)
	ValidateSessionToken(token string) (*jwt.Token, error)
}
