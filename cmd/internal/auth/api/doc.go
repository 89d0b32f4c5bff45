// Package authapi exposes the auth service over HTTP.
//
// Three endpoints under /api/auth: register, login and refresh. All accept
// strict JSON bodies and answer with the same token envelope on success.
// Failures from the auth service are flattened at this boundary: credential
// and lookup failures share one generic 401 body so responses do not reveal
// whether an account exists.
package authapi
