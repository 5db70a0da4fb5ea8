package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrInvalidSignature  = errors.New("jwt: invalid signature")
	ErrUnexpectedAlg     = errors.New("jwt: unexpected signing algorithm")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingClaims     = errors.New("jwt: missing claims")
)
