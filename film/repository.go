package film

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/filmotheque/resource"
)

// DefaultLimit caps listings when no limite is given.
const DefaultLimit = 1000

// ListQuery selects and orders a listing.
type ListQuery struct {
	Tri   string
	Ordre resource.Direction
	Limit int
}

// Repository persists films in the document store.
type Repository struct {
	store resource.Store
}

// NewRepository creates a repository over store.
func NewRepository(store resource.Store) *Repository {
	return &Repository{store: store}
}

// List returns films ordered by q.Tri. Films without that field are left
// out.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]*Film, error) {
	docs, err := r.store.Query(ctx, Collection, resource.Query{OrderBy: q.Tri, Direction: q.Ordre, Limit: q.Limit})
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return toFilms(docs), nil
}

// Get loads one film. Unknown ids return resource.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*Film, error) {
	d, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get film: %w", err)
	}
	return fromDocument(d), nil
}

// TitreTaken reports whether a film with this exact title exists.
func (r *Repository) TitreTaken(ctx context.Context, titre string) (bool, error) {
	docs, err := r.store.Query(ctx, Collection, resource.Query{
		Filters: []resource.Filter{resource.Eq(FieldTitre, titre)},
		Limit:   1,
	})
	if err != nil {
		return false, fmt.Errorf("find film by titre: %w", err)
	}
	return len(docs) > 0, nil
}

// Create stores a film and returns it with its id.
func (r *Repository) Create(ctx context.Context, in *CreateInput) (*Film, error) {
	id, err := r.store.Add(ctx, Collection, in.fields())
	if err != nil {
		return nil, fmt.Errorf("add film: %w", err)
	}
	return &Film{
		ID:            id,
		Titre:         in.Titre,
		Genres:        in.Genres,
		Description:   in.Description,
		TitreVignette: in.TitreVignette,
		Realisation:   in.Realisation,
		Annee:         string(in.Annee),
	}, nil
}

// Update merges patch into film id.
func (r *Repository) Update(ctx context.Context, id string, patch resource.Fields) error {
	if err := r.store.Update(ctx, Collection, id, patch); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update film: %w", err)
	}
	return nil
}

// Delete removes film id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete film: %w", err)
	}
	return nil
}

func toFilms(docs []resource.Document) []*Film {
	out := make([]*Film, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out
}
