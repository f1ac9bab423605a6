package tokens

import "github.com/golang-jwt/jwt/v5"

// Kind separates access tokens from refresh tokens. A verifier expecting one
// kind must refuse the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the signed payload: user, type, iat, exp, plus jti on refresh tokens.
type Claims struct {
	User string `json:"user"`
	Type Kind   `json:"type"`
	jwt.RegisteredClaims
}
