package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used when no database is configured
// (dev mode) and in tests. Uniqueness is enforced under a single mutex, so
// the check-then-act race the SQL constraints arbitrate in Postgres is
// arbitrated by the lock here.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]User
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		users:  make(map[int64]User),
	}
}

// ExistsByUsername reports whether a user with the given username exists.
func (s *MemoryStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookupByUsername(username)
	return ok, nil
}

// ExistsByEmail reports whether a user with the given email exists.
func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookupByEmail(email)
	return ok, nil
}

// FindByUsername returns the user matching the normalized username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.lookupByUsername(username); ok {
		return u, nil
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

// FindByEmail returns the user matching the normalized email.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.lookupByEmail(email); ok {
		return u, nil
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

// Save inserts (ID == 0, assigning the next id) or updates a user.
func (s *MemoryStore) Save(ctx context.Context, u User) (User, error) {
	const op = "identity.Save"
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if NormalizeUsername(u.Username) == "" || NormalizeEmail(u.Email) == "" || u.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username, email and password hash are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if other, ok := s.lookupByUsername(u.Username); ok && other.ID != u.ID {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if other, ok := s.lookupByEmail(u.Email); ok && other.ID != u.ID {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
	} else if _, ok := s.users[u.ID]; !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) lookupByUsername(username string) (User, bool) {
	norm := NormalizeUsername(username)
	for _, u := range s.users {
		if NormalizeUsername(u.Username) == norm {
			return u, true
		}
	}
	return User{}, false
}

func (s *MemoryStore) lookupByEmail(email string) (User, bool) {
	norm := NormalizeEmail(email)
	for _, u := range s.users {
		if NormalizeEmail(u.Email) == norm {
			return u, true
		}
	}
	return User{}, false
}
