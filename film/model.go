package film

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/util"
)

// Collection is the store collection holding films.
const Collection = "films"

// Stored field names. The sortable ones are accepted by the tri parameter.
const (
	FieldTitre         = "titre"
	FieldGenres        = "genres"
	FieldDescription   = "description"
	FieldTitreVignette = "titreVignette"
	FieldRealisation   = "realisation"
	FieldAnnee         = "annee"
)

// SortFields are the fields a listing can be ordered by.
var SortFields = []string{FieldAnnee, FieldTitre, FieldRealisation}

// Film is a catalogue entry.
type Film struct {
	ID            string   `json:"id"`
	Titre         string   `json:"titre"`
	Genres        []string `json:"genres"`
	Description   string   `json:"description"`
	TitreVignette string   `json:"titreVignette"`
	Realisation   string   `json:"realisation"`
	Annee         string   `json:"annee"`
}

func fromDocument(d *resource.Document) *Film {
	f := &Film{
		ID:            d.ID,
		Titre:         d.String(FieldTitre),
		Description:   d.String(FieldDescription),
		TitreVignette: d.String(FieldTitreVignette),
		Realisation:   d.String(FieldRealisation),
		Annee:         d.String(FieldAnnee),
	}
	if f.Annee == "" {
		if n, ok := d.Int(FieldAnnee); ok {
			f.Annee = strconv.Itoa(n)
		}
	}
	if raw, ok := d.Fields[FieldGenres].([]any); ok {
		for _, g := range raw {
			if s, ok := g.(string); ok {
				f.Genres = append(f.Genres, s)
			}
		}
	}
	return f
}

// Annee is a release year. Requests may send it as 1979 or "1979".
type Annee string

var errAnneeType = errors.New("annee must be a string or an integer")

func (a *Annee) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*a = Annee(s)
		return nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return errAnneeType
	}
	*a = Annee(strconv.Itoa(n))
	return nil
}

// CreateInput is the POST /films body. Every field is required.
type CreateInput struct {
	Titre         string   `json:"titre" validate:"required"`
	Genres        []string `json:"genres" validate:"required,min=1,dive,required"`
	Description   string   `json:"description" validate:"required"`
	TitreVignette string   `json:"titreVignette" validate:"required"`
	Realisation   string   `json:"realisation" validate:"required"`
	Annee         Annee    `json:"annee" validate:"required,year"`
}

// escape trims and HTML-escapes every text field in place.
func (in *CreateInput) escape() {
	in.Titre = util.EscapeText(in.Titre)
	in.Genres = escapeAll(in.Genres)
	in.Description = util.EscapeText(in.Description)
	in.TitreVignette = util.EscapeText(in.TitreVignette)
	in.Realisation = util.EscapeText(in.Realisation)
	in.Annee = Annee(util.EscapeText(string(in.Annee)))
}

func (in *CreateInput) fields() resource.Fields {
	return resource.Fields{
		FieldTitre:         in.Titre,
		FieldGenres:        in.Genres,
		FieldDescription:   in.Description,
		FieldTitreVignette: in.TitreVignette,
		FieldRealisation:   in.Realisation,
		FieldAnnee:         string(in.Annee),
	}
}

// UpdateInput is the PUT /films/:id body. Absent fields are left unchanged;
// present ones must not be empty.
type UpdateInput struct {
	Titre         *string  `json:"titre" validate:"omitnil,min=1"`
	Genres        []string `json:"genres" validate:"omitnil,min=1,dive,required"`
	Description   *string  `json:"description" validate:"omitnil,min=1"`
	TitreVignette *string  `json:"titreVignette" validate:"omitnil,min=1"`
	Realisation   *string  `json:"realisation" validate:"omitnil,min=1"`
	Annee         *Annee   `json:"annee" validate:"omitnil,year"`
}

func (in *UpdateInput) escape() {
	for _, s := range []*string{in.Titre, in.Description, in.TitreVignette, in.Realisation} {
		if s != nil {
			*s = util.EscapeText(*s)
		}
	}
	if in.Genres != nil {
		in.Genres = escapeAll(in.Genres)
	}
	if in.Annee != nil {
		*in.Annee = Annee(util.EscapeText(string(*in.Annee)))
	}
}

// patch returns only the fields present in the request.
func (in *UpdateInput) patch() resource.Fields {
	p := resource.Fields{}
	set := func(field string, v *string) {
		if v != nil {
			p[field] = *v
		}
	}
	set(FieldTitre, in.Titre)
	set(FieldDescription, in.Description)
	set(FieldTitreVignette, in.TitreVignette)
	set(FieldRealisation, in.Realisation)
	if in.Genres != nil {
		p[FieldGenres] = in.Genres
	}
	if in.Annee != nil {
		p[FieldAnnee] = string(*in.Annee)
	}
	return p
}

func escapeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = util.EscapeText(s)
	}
	return out
}
