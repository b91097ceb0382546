package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Parser validates HMAC-signed access tokens issued by the identity
// service and extracts the caller's profile id.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type claims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

func (p *Parser) Parse(token string) (uuid.UUID, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	profileID, err := uuid.Parse(parsed.ProfileID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid profile_id claim: %w", err)
	}
	return profileID, nil
}
