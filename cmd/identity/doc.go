// Package identity implements the credential store boundary of the Halal AI
// backend: canonical user records, lookups used by authentication, and
// password hashing.
//
// The package is intentionally dependency-light and security-first. Token
// logic lives elsewhere; identity only answers "who is this user and does
// this password match".
package identity
