// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

/*
Package auth resolves the caller behind a bearer credential.

A Guard parses the Authorization header, asks an IdentityProvider who the
token belongs to and returns a CallerIdentity. Two providers exist: the
Supabase GoTrue client in package supabase, and JWTProvider, which verifies
HS256 tokens locally with a shared secret.

The Guard is stateless. Every call asks the provider again, nothing is
cached or written, and failures are never retried.

# Errors

	ErrMissingCredential  header absent or not a bearer token    401
	ErrInvalidCredential  provider rejected the token            401
	ErrGuardFailure       provider unreachable or misbehaving    500

Providers report a refused token with ErrTokenRejected; any other provider
error becomes ErrGuardFailure.

# HTTP

Middleware.RequireAuth runs the Guard for each request and stores the
identity in the request context. Handlers read it with FromContext.
*/
package auth
