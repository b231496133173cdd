package film

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kbukum/filmotheque/validation"
)

//go:embed data/films.json
var seedJSON []byte

var (
	loadSeedOnce sync.Once
	seedFilms    []CreateInput
	seedErr      error
)

// SeedFilms returns the embedded starter catalogue.
func SeedFilms() ([]CreateInput, error) {
	loadSeedOnce.Do(func() {
		var films []CreateInput
		if err := json.Unmarshal(seedJSON, &films); err != nil {
			seedErr = fmt.Errorf("film: decode seed data: %w", err)
			return
		}
		for i := range films {
			films[i].escape()
			if err := validation.Validate(films[i]); err != nil {
				seedErr = fmt.Errorf("film: seed entry %d: %w", i, err)
				return
			}
		}
		seedFilms = films
	})
	return seedFilms, seedErr
}

// Seed adds the embedded catalogue, skipping titles already present, and
// returns the films it added.
func (r *Repository) Seed(ctx context.Context) ([]*Film, error) {
	films, err := SeedFilms()
	if err != nil {
		return nil, err
	}
	added := make([]*Film, 0, len(films))
	for i := range films {
		in := films[i]
		taken, err := r.TitreTaken(ctx, in.Titre)
		if err != nil {
			return added, err
		}
		if taken {
			continue
		}
		f, err := r.Create(ctx, &in)
		if err != nil {
			return added, err
		}
		added = append(added, f)
	}
	return added, nil
}
