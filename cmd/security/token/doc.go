// Package token holds the signing-secret policy for session tokens.
//
// Session tokens are HMAC-signed; the secret is process-wide configuration
// loaded once at startup. This package enforces the minimum secret length so
// a weak key is rejected before any token is ever issued.
package token
