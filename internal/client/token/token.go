// Package token reads the expiry claim of a bearer token without verifying
// its signature.
//
// The result is only a UX estimate used to schedule the automatic logout.
// The Identity Service stays authoritative: it validates the token on every
// authenticated call.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenDecode is returned for any token whose expiry cannot be read:
// wrong segment count, a payload segment that is not base64url JSON, or a
// missing or non-numeric exp claim. The header and signature segments are
// never inspected.
var ErrTokenDecode = errors.New("token decode error")

var parser = jwt.NewParser()

// ExpiresAt returns the instant encoded in the exp claim (Unix seconds).
func ExpiresAt(tokenString string) (time.Time, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: expected three segments", ErrTokenDecode)
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrTokenDecode)
	}
	return exp.Time, nil
}

// Expired reports whether the token is unreadable or its expiry is at or
// before now.
func Expired(tokenString string, now time.Time) bool {
	exp, err := ExpiresAt(tokenString)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
