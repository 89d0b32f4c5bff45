// Package token issues and inspects the self-contained session tokens of
// the Halal AI backend.
//
// Tokens are HS256-signed JWTs carrying the username as subject and the
// owning user id as a custom claim. They are the only per-session state in
// the system; nothing is stored server-side.
//
// The package exposes two deliberately separate read paths:
//
//   - the strict path (Subject, Validate) used to authorize live requests,
//     which rejects expired tokens, and
//   - the even-if-expired path (SubjectEvenIfExpired, UserIDEvenIfExpired)
//     used only by the refresh flow, which tolerates expiry but never
//     tolerates a bad signature or structure.
//
// Keeping them as distinct functions (rather than a shared function with a
// flag) makes the authorization-vs-refresh distinction visible at every
// call site.
package token
