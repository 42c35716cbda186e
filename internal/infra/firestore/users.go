package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// UserRepository reads and seeds the portal users collection.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetByUsername finds one user by username, or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.Usuario, error) {
	it := r.client.Collection(colUsers).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: querying %s: %w", username, err)
	}

	var u domain.Usuario
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("GetByUsername: reading user %s: %w", username, err)
	}
	return &u, nil
}

// Seed creates or replaces a portal user with a bcrypt hash of the given
// password. Used by the seed-user CLI only.
func (r *UserRepository) Seed(ctx context.Context, username, password string, roles []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("Seed: hashing password: %w", err)
	}

	user := &domain.Usuario{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if _, err := r.client.Collection(colUsers).Doc(username).Set(ctx, user); err != nil {
		return fmt.Errorf("Seed: writing user %s: %w", username, err)
	}
	return nil
}
