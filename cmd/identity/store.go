package identity

import "context"

// Store is the credential persistence boundary.
//
// Lookups match on the normalized forms of username and email (see
// normalize.go); implementations must keep the Exists* and Find* views
// consistent with each other.
type Store interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByUsername and FindByEmail return a NotFoundError when no user
	// matches; other errors indicate store failure.
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)

	// Save inserts the user when ID is zero (assigning a new id) or
	// updates the existing record. A uniqueness violation on username or
	// email surfaces as a ConflictError naming the offending field, which
	// arbitrates check-then-act races between concurrent registrations.
	Save(ctx context.Context, u User) (User, error)
}
