package film

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filmotheque/account"
	"github.com/kbukum/filmotheque/auth"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/server/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

const validToken = "Bearer ok"

type fixture struct {
	router *gin.Engine
	store  *resource.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := resource.NewMemoryStore()
	gate := middleware.Auth(auth.TokenValidatorFunc(func(_ context.Context, token string) (any, error) {
		if token != "ok" {
			return nil, auth.ErrUnauthenticated
		}
		return &account.Account{ID: "acc-1", Courriel: "admin@example.com", Privilege: 1}, nil
	}), logger.Nop())

	r := gin.New()
	NewHandler(NewRepository(store), logger.Nop()).RegisterRoutes(r, gate)
	return &fixture{router: r, store: store}
}

func (f *fixture) do(method, path, body, authz string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) add(t *testing.T, fields resource.Fields) string {
	t.Helper()
	id, err := f.store.Add(context.Background(), Collection, fields)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return env.Data
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return env.Error.Code
}

const alienJSON = `{"titre":"  Alien ","genres":["Horreur"],"description":"<b>Nostromo</b>","titreVignette":"alien.jpg","realisation":"Ridley Scott","annee":1979}`

func seedThree(t *testing.T, f *fixture) {
	f.add(t, resource.Fields{FieldTitre: "Parasite", FieldRealisation: "Bong Joon-ho", FieldAnnee: "2019", FieldGenres: []any{"Thriller"}})
	f.add(t, resource.Fields{FieldTitre: "Alien", FieldRealisation: "Ridley Scott", FieldAnnee: "1979"})
	f.add(t, resource.Fields{FieldTitre: "Mommy", FieldRealisation: "Xavier Dolan", FieldAnnee: "2014"})
}

func titres(films []Film) string {
	out := make([]string, len(films))
	for i, f := range films {
		out[i] = f.Titre
	}
	return strings.Join(out, ",")
}

func TestList(t *testing.T) {
	f := newFixture(t)
	seedThree(t, f)

	tests := []struct {
		query string
		want  string
	}{
		{"", "Alien,Mommy,Parasite"},
		{"?tri=titre&ordre=desc", "Parasite,Mommy,Alien"},
		{"?tri=realisation", "Parasite,Alien,Mommy"},
		{"?limite=2&ordre=DESC", "Parasite,Mommy"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rr := f.do("GET", "/films"+tc.query, "", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
			}
			if got := titres(decode[[]Film](t, rr)); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestList_BadQuery(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"?tri=description", "?limite=abc", "?limite=0", "?ordre=sideways"} {
		rr := f.do("GET", "/films"+q, "", "")
		if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "INVALID_INPUT" {
			t.Errorf("%s: expected 400 INVALID_INPUT, got %d (%s)", q, rr.Code, rr.Body.String())
		}
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, resource.Fields{FieldTitre: "Mommy", FieldAnnee: 2014.0, FieldGenres: []any{"Drame"}})

	rr := f.do("GET", "/films/"+id, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[Film](t, rr)
	if got.ID != id || got.Annee != "2014" || len(got.Genres) != 1 {
		t.Errorf("unexpected film %+v", got)
	}

	rr = f.do("GET", "/films/missing", "", "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "NOT_FOUND" {
		t.Errorf("expected 404 NOT_FOUND, got %d (%s)", rr.Code, rr.Body.String())
	}
}

func TestWritesRequireToken(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, resource.Fields{FieldTitre: "Mommy"})

	for _, tc := range []struct{ method, path, body, authz string }{
		{"POST", "/films", alienJSON, ""},
		{"POST", "/films", alienJSON, "Bearer nope"},
		{"PUT", "/films/" + id, `{"titre":"x"}`, "Token ok"},
		{"DELETE", "/films/" + id, "", ""},
		{"POST", "/films/initialiser", "", ""},
	} {
		rr := f.do(tc.method, tc.path, tc.body, tc.authz)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rr.Code)
		}
	}

	if _, err := f.store.Get(context.Background(), Collection, id); err != nil {
		t.Error("rejected requests must not touch the store")
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	rr := f.do("POST", "/films", alienJSON, validToken)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	created := decode[Film](t, rr)
	if created.ID == "" || created.Titre != "Alien" || created.Annee != "1979" {
		t.Errorf("unexpected film %+v", created)
	}
	if created.Description != "&lt;b&gt;Nostromo&lt;&#x2F;b&gt;" {
		t.Errorf("expected escaped description, got %q", created.Description)
	}

	rr = f.do("POST", "/films", alienJSON, validToken)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "ALREADY_EXISTS" {
		t.Errorf("duplicate titre: expected 400 ALREADY_EXISTS, got %d (%s)", rr.Code, rr.Body.String())
	}
}

func TestCreate_Invalid(t *testing.T) {
	f := newFixture(t)
	bodies := map[string]string{
		"missing fields": `{"titre":"Jaws"}`,
		"no genres":      `{"titre":"Jaws","genres":[],"description":"d","titreVignette":"j.jpg","realisation":"Spielberg","annee":"1975"}`,
		"blank titre":    `{"titre":"   ","genres":["Horreur"],"description":"d","titreVignette":"j.jpg","realisation":"Spielberg","annee":"1975"}`,
		"bad annee":      `{"titre":"Jaws","genres":["Horreur"],"description":"d","titreVignette":"j.jpg","realisation":"Spielberg","annee":"75"}`,
		"not json":       `titre=Jaws`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := f.do("POST", "/films", body, validToken)
			if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "INVALID_INPUT" {
				t.Errorf("expected 400 INVALID_INPUT, got %d (%s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, resource.Fields{FieldTitre: "Mommy", FieldAnnee: "2014", FieldRealisation: "Xavier Dolan"})

	rr := f.do("PUT", "/films/"+id, `{"annee":"2015","description":" Une mère "}`, validToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	applied := decode[map[string]any](t, rr)
	if applied["annee"] != "2015" || applied["description"] != "Une mère" || applied["id"] != id {
		t.Errorf("unexpected applied fields %v", applied)
	}
	if _, ok := applied[FieldTitre]; ok {
		t.Error("untouched fields must not be reported as applied")
	}

	doc, _ := f.store.Get(context.Background(), Collection, id)
	if doc.String(FieldTitre) != "Mommy" || doc.String(FieldAnnee) != "2015" {
		t.Errorf("unexpected stored film %v", doc.Fields)
	}

	for name, body := range map[string]string{
		"empty body":  `{}`,
		"no genres":   `{"genres":[]}`,
		"blank titre": `{"titre":"  "}`,
	} {
		if rr := f.do("PUT", "/films/"+id, body, validToken); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rr.Code)
		}
	}

	rr = f.do("PUT", "/films/missing", `{"titre":"x"}`, validToken)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, resource.Fields{FieldTitre: "Mommy"})

	if rr := f.do("DELETE", "/films/"+id, "", validToken); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr := f.do("GET", "/films/"+id, "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rr.Code)
	}
	if rr := f.do("DELETE", "/films/"+id, "", validToken); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestInitialiser(t *testing.T) {
	f := newFixture(t)
	seed, err := SeedFilms()
	if err != nil {
		t.Fatalf("SeedFilms: %v", err)
	}

	rr := f.do("POST", "/films/initialiser", "", validToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if added := decode[[]Film](t, rr); len(added) != len(seed) {
		t.Errorf("expected %d films added, got %d", len(seed), len(added))
	}

	rr = f.do("POST", "/films/initialiser", "", validToken)
	if added := decode[[]Film](t, rr); len(added) != 0 {
		t.Errorf("second seeding should add nothing, got %d", len(added))
	}

	rr = f.do("GET", "/films", "", "")
	if got := decode[[]Film](t, rr); len(got) != len(seed) {
		t.Errorf("expected %d films listed, got %d", len(seed), len(got))
	}
}
