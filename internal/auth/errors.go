package auth

import "errors"

var (
	// ErrInvalidToken indicates the bearer token failed signature, expiry
	// or required-claim validation.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)
