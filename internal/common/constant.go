// Package common contains shared constants and sentinel errors used across
// NoteKeeper client components.
package common

// AuthorizationHeaderName is the gRPC metadata / HTTP header key that
// carries the bearer token on authenticated calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in AuthorizationHeaderName values.
const BearerPrefix = "Bearer "

// TokenMetadataKey is the local metadata row holding the session token.
const TokenMetadataKey = "token"
