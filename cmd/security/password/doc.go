// Package password provides password hashing and verification for the
// Halal AI backend.
//
// It implements bcrypt hashing with:
//   - configurable cost (via environment variables)
//   - password policy validation (length bounds)
//   - constant-time verification
//
// Security notes:
//   - Hash strings are treated as untrusted input during Verify.
//   - bcrypt only considers the first 72 bytes of input; the policy caps
//     password length accordingly instead of silently truncating.
package password
