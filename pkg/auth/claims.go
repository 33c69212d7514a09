package auth

import "github.com/golang-jwt/jwt/v5"

// TokenType distinguishes access tokens from refresh tokens. Validation
// callers must check the type matches the expected use: an access token is
// never accepted where a refresh token is required, and vice versa.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token presented on API requests
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is a long-lived token exchanged for new pairs
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the JWT claims carried by every issued token. The registered
// ID claim (jti) is the handle used by the revocation set.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
}

// TokenPair is an access/refresh token pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
