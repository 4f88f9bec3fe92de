// Package auth verifies the JWTs issued by the users service and decides
// what each role may do.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"certdocs/internal/apperror"
)

// Claims is the token payload: the standard claims (subject is the user's
// email) plus the numeric user id and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
	Role   Role  `json:"rol"`
}

// Identity is a verified caller. Token is kept so it can be forwarded to
// sibling services.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
	Token  string
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify checks the HMAC signature and expiry of token and returns the
// caller's identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	const op = "auth.Verify"
	if token == "" {
		return Identity{}, apperror.InvalidToken(op, errors.New("missing token"))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return Identity{}, apperror.InvalidToken(op, err)
	}
	if !parsed.Valid {
		return Identity{}, apperror.InvalidToken(op, errors.New("token not valid"))
	}
	if !claims.Role.Valid() {
		return Identity{}, apperror.InvalidToken(op, errors.New("unknown role"))
	}

	return Identity{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Role:   claims.Role,
		Token:  token,
	}, nil
}

// Sign issues an HS256 token for id valid for ttl.
func (v *Verifier) Sign(id Identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: id.UserID,
		Role:   id.Role,
	})
	return token.SignedString(v.secret)
}
