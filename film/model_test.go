package film

import (
	"encoding/json"
	"testing"
)

func TestAnnee_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Annee
		ok   bool
	}{
		{`1979`, "1979", true},
		{`"1979"`, "1979", true},
		{`19.5`, "", false},
		{`true`, "", false},
	}
	for _, tc := range tests {
		var a Annee
		err := json.Unmarshal([]byte(tc.raw), &a)
		if tc.ok && (err != nil || a != tc.want) {
			t.Errorf("%s: got %q, %v", tc.raw, a, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected an error", tc.raw)
		}
	}
}

func TestUpdateInput_Patch(t *testing.T) {
	var in UpdateInput
	if err := json.Unmarshal([]byte(`{"titre":" <i>Jaws</i> ","genres":["Horreur"]}`), &in); err != nil {
		t.Fatal(err)
	}
	in.escape()
	p := in.patch()
	if len(p) != 2 {
		t.Fatalf("expected 2 fields, got %v", p)
	}
	if p[FieldTitre] != "&lt;i&gt;Jaws&lt;&#x2F;i&gt;" {
		t.Errorf("unexpected titre %q", p[FieldTitre])
	}
}

func TestSeedFilms_Valid(t *testing.T) {
	films, err := SeedFilms()
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, f := range films {
		if seen[f.Titre] {
			t.Errorf("duplicate seed titre %q", f.Titre)
		}
		seen[f.Titre] = true
	}
}
