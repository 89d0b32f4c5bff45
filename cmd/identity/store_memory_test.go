package identity

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_SaveAssignsIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u1, err := s.Save(ctx, User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Enabled: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if u1.ID != 1 {
		t.Fatalf("expected id 1, got %d", u1.ID)
	}
	if u1.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}

	u2, err := s.Save(ctx, User{Username: "bob", Email: "bob@x.com", PasswordHash: "h", Enabled: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if u2.ID != 2 {
		t.Fatalf("expected id 2, got %d", u2.ID)
	}
}

func TestMemoryStore_UniquenessConflicts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Save(ctx, User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Enabled: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Username conflict is case-insensitive.
	_, err := s.Save(ctx, User{Username: "ALICE", Email: "other@x.com", PasswordHash: "h", Enabled: true})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var ce ConflictError
	if !errors.As(err, &ce) || ce.Field != "username" {
		t.Fatalf("expected username conflict, got %v", err)
	}

	_, err = s.Save(ctx, User{Username: "bob", Email: "Alice@X.com", PasswordHash: "h", Enabled: true})
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestMemoryStore_LookupsNormalize(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, User{Username: "Alice", Email: "Alice@X.com", PasswordHash: "h", Enabled: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err := s.ExistsByUsername(ctx, "  alice ")
	if err != nil || !ok {
		t.Fatalf("ExistsByUsername: ok=%v err=%v", ok, err)
	}
	ok, err = s.ExistsByEmail(ctx, "ALICE@x.COM")
	if err != nil || !ok {
		t.Fatalf("ExistsByEmail: ok=%v err=%v", ok, err)
	}

	got, err := s.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.ID != saved.ID {
		t.Fatalf("id mismatch: got %d want %d", got.ID, saved.ID)
	}

	if _, err := s.FindByUsername(ctx, "nobody"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.FindByEmail(ctx, "nobody@x.com"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_UpdateKeepsID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.Save(ctx, User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Enabled: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	u.Enabled = false
	updated, err := s.Save(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != u.ID {
		t.Fatalf("id changed on update")
	}

	got, err := s.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Enabled {
		t.Fatalf("expected disabled user after update")
	}
}
