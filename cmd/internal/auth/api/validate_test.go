package authapi

import (
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	valid := registerRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}
	if errs := validateRegister(valid); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	cases := []struct {
		name  string
		req   registerRequest
		field string
	}{
		{"blank username", registerRequest{Username: "  ", Email: "a@example.com", Password: "password123"}, "username"},
		{"too short username", registerRequest{Username: "ab", Email: "a@example.com", Password: "password123"}, "username"},
		{"too long username", registerRequest{Username: strings.Repeat("a", 51), Email: "a@example.com", Password: "password123"}, "username"},
		{"blank email", registerRequest{Username: "alice", Email: "", Password: "password123"}, "email"},
		{"malformed email", registerRequest{Username: "alice", Email: "not-an-email", Password: "password123"}, "email"},
		{"no domain dot", registerRequest{Username: "alice", Email: "alice@localhost", Password: "password123"}, "email"},
		{"bracketed email", registerRequest{Username: "alice", Email: "Alice <alice@example.com>", Password: "password123"}, "email"},
		{"blank password", registerRequest{Username: "alice", Email: "a@example.com", Password: ""}, "password"},
		{"short password", registerRequest{Username: "alice", Email: "a@example.com", Password: "1234567"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validateRegister(tc.req)
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if errs := validateLogin(loginRequest{UsernameOrEmail: "alice", Password: "x"}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if errs := validateLogin(loginRequest{UsernameOrEmail: " ", Password: ""}); len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
}
