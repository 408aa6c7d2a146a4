package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telechat/domain"
	"telechat/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user. Token issuance
// lives in the credential service; this helper exists for tooling and tests.
func GenerateToken(secret []byte, userID string, role domain.Role,
	tokenDuration time.Duration) (string, error) {
	expirationTime := time.Now().Add(tokenDuration)

	claims := &CustomClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "telechat",
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// Verifier checks bearer credentials presented during the websocket
// handshake. It implements contract.TokenVerifier.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) Verifier {
	return Verifier{secret: secret}
}

// Verify parses and validates the signature and expiration of a JWT string,
// returning the authenticated identity. Any failure maps to
// ErrAuthentication so the handshake layer has a single rejection path.
func (v Verifier) Verify(tokenString string) (string, domain.Role, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return "", "", errors.ErrAuthentication
	}

	role := domain.Role(claims.Role)
	if claims.UserID == "" || !role.Valid() {
		return "", "", errors.ErrAuthentication
	}

	return claims.UserID, role, nil
}
