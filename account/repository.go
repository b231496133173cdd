package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/filmotheque/resource"
)

// Repository persists accounts in the document store.
type Repository struct {
	store resource.Store
}

// NewRepository creates a repository over store.
func NewRepository(store resource.Store) *Repository {
	return &Repository{store: store}
}

// FindByCourriel returns every account registered under courriel. More than
// one means the registration race happened.
func (r *Repository) FindByCourriel(ctx context.Context, courriel string) ([]*Account, error) {
	docs, err := r.store.Query(ctx, Collection, resource.Query{
		Filters: []resource.Filter{resource.Eq(fieldCourriel, courriel)},
	})
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	out := make([]*Account, 0, len(docs))
	for i := range docs {
		a, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Get loads an account by id. Unknown ids return resource.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*Account, error) {
	d, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return fromDocument(d)
}

// Create stores a and sets its id.
func (r *Repository) Create(ctx context.Context, a *Account) error {
	id, err := r.store.Add(ctx, Collection, a.fields())
	if err != nil {
		return fmt.Errorf("add account: %w", err)
	}
	a.ID = id
	return nil
}
