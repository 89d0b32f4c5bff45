package authapi

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
)

// validateRegister returns one message per invalid field; an empty map
// means the request is acceptable. Values are checked after trimming,
// matching what the auth service will store.
func validateRegister(req registerRequest) map[string]string {
	errs := make(map[string]string)

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		errs["username"] = "username must not be blank"
	case utf8.RuneCountInString(username) < usernameMinLen,
		utf8.RuneCountInString(username) > usernameMaxLen:
		errs["username"] = "username must be between 3 and 50 characters"
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs["email"] = "email must not be blank"
	} else if !validEmail(email) {
		errs["email"] = "email must be well-formed"
	}

	if req.Password == "" {
		errs["password"] = "password must not be blank"
	} else if utf8.RuneCountInString(req.Password) < passwordMinLen {
		errs["password"] = "password must be at least 8 characters"
	}

	return errs
}

func validateLogin(req loginRequest) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(req.UsernameOrEmail) == "" {
		errs["usernameOrEmail"] = "username or email must not be blank"
	}
	if req.Password == "" {
		errs["password"] = "password must not be blank"
	}
	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject the name-and-brackets form; only the bare address is accepted.
	if addr.Address != s {
		return false
	}
	// ParseAddress admits local-only addresses; require a dotted domain.
	at := strings.LastIndex(s, "@")
	if at < 0 || !strings.Contains(s[at+1:], ".") {
		return false
	}
	return true
}
