package main

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errInvalidSessionToken = errors.New("invalid session token")

// sessionClaims are issued by the identity provider; the subject is the user id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

func (app *application) parseSessionToken(tokenStr string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if app.config.Auth.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(app.config.Auth.JWTIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(app.config.Auth.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidSessionToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return uuid.Nil, errInvalidSessionToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errInvalidSessionToken
	}

	return id, nil
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
