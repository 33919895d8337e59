package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     string
	Nome       string
	Hierarquia enums.Hierarquia
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     string           `json:"user_id"`
	Nome       string           `json:"nome,omitempty"`
	Hierarquia enums.Hierarquia `json:"hierarquia"`
	jwt.RegisteredClaims
}
