// Package client contains the Identity Service transports used by the
// NoteKeeper session store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering
//     Login, Register, Logout, CurrentUser, RefreshToken, UpdateProfile,
//     ChangePassword and Ping.
//  2. An HTTP/JSON implementation (see HTTPClient) for the REST API, with
//     retries on idempotent reads when the server is unreachable.
//  3. A gRPC implementation (see GRPCClient) that injects the bearer token
//     via an interceptor and maps status codes to the error taxonomy.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Failures are classified with sentinel errors matched by errors.Is:
// ErrUnavailable (no response), ErrUnauthorized (401/403) and ErrServer
// (any other rejection). Rejections are returned as *ResponseError so the
// server message stays available through Message.
//
// Both transports call the OnUnauthorized handler when an authenticated
// call is rejected with 401/403. Login, Register and Ping are sent without
// credentials and never trigger it.
package client
