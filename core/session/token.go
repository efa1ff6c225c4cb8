package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

// Claims represents the claims transmitted via the session JWT.
// The session ID travels as the token ID (jti).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

type tokenSigner struct {
	issuer string
	key    []byte
}

func (ts tokenSigner) sign(sess Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    ts.issuer,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		Email: sess.Email,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (ts tokenSigner) parse(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return ts.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ts.issuer),
		jwt.WithTimeFunc(core.NowFunc),
	)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
