package roster

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hearthgate/hearthgate/internal/common"
)

// Claims carries the member identity inside an HS256 session token.
type Claims struct {
	jwt.RegisteredClaims
	MemberID string
	Role     string
}

// GenerateToken mints a session token for a member.
func GenerateToken(memberID, role string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		MemberID: memberID,
		Role:     role,
	})
	return token.SignedString(secretKey)
}

// MemberIDFromToken validates a session token and returns the member it was
// minted for.
func MemberIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	return claims.MemberID, nil
}
