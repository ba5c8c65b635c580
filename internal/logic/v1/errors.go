// Package v1 provides authentication business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent authentication
// failures. They are wrapped with context using fmt.Errorf("%w") when
// returned from business logic methods, and handlers classify them with
// errors.Is.
//
// Example Usage:
//
//	if row == nil {
//	    return nil, fmt.Errorf("authenticate account %q: %w", code, ErrInvalidCredentials)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	case errors.Is(err, logicv1.ErrAccountExists):
//	    c.JSON(http.StatusConflict, gin.H{"error": "Account already registered"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for authentication operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the account code or password is wrong.
	// The two cases are deliberately indistinguishable to the caller.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountExists indicates the account code is already registered.
	// HTTP Status: 409 Conflict
	ErrAccountExists = errors.New("account already exists")

	// ErrUnauthenticated indicates the request carries no usable identity:
	// the token is expired, malformed, badly signed, or the account behind
	// it no longer exists.
	// HTTP Status: 401 Unauthorized
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenSignatureInvalid indicates the token signature does not
	// verify against the service signing key.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenMalformed indicates the token could not be parsed into the
	// expected shape.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrEmptyPassword indicates an attempt to hash an empty password.
	// HTTP Status: 400 Bad Request
	ErrEmptyPassword = errors.New("password cannot be empty")
)
