// Package auth orchestrates registration, login and token refresh for the
// Halal AI backend.
//
// It holds no state of its own: each operation is a short linear protocol
// against the credential store, the password hasher and the token service.
// The store is the only shared mutable resource; uniqueness races between
// the existence checks and Save are arbitrated by the store itself.
package auth
