package validation

import (
	"testing"

	"github.com/kbukum/filmotheque/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("titre", "Alien").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("titre", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("titre", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"annee", "titre", "realisation"}
	if New().OneOf("tri", "titre", allowed).HasErrors() {
		t.Error("expected no error for allowed value")
	}
	if New().OneOf("tri", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	if !New().OneOf("tri", "genre", allowed).HasErrors() {
		t.Error("expected error for disallowed value")
	}
}

func TestValidatorPositiveInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 1000, false},
		{"5", 5, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range tests {
		v := New()
		got := v.PositiveInt("limite", tc.in, 1000)
		if got != tc.want || v.HasErrors() != tc.wantErr {
			t.Errorf("PositiveInt(%q) = %d, errors=%v; want %d, errors=%v", tc.in, got, v.HasErrors(), tc.want, tc.wantErr)
		}
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for validator without errors")
	}

	v := New().Required("titre", "").Year("annee", "19")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", appErr.Details["fields"])
	}
	if fields[0].Field != "titre" || fields[1].Field != "annee" {
		t.Errorf("unexpected field order %v", fields)
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Secret#123", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},               // 7 chars
		{"Aa1!aaaaaaaaaaaaaaaaa", false}, // 21 chars
		{"secret#123", false},            // no upper
		{"SECRET#123", false},            // no lower
		{"Secret#abc", false},            // no digit
		{"Secret1234", false},            // no symbol
	}
	for _, tc := range tests {
		if got := StrongPassword(tc.pw); got != tc.want {
			t.Errorf("StrongPassword(%q) = %v, want %v", tc.pw, got, tc.want)
		}
	}
}

func TestYear(t *testing.T) {
	for _, s := range []string{"1979", "2024", "0001"} {
		if !Year(s) {
			t.Errorf("expected %q to be a year", s)
		}
	}
	for _, s := range []string{"", "79", "19790", "197a", "1979-01-01"} {
		if Year(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

type registerInput struct {
	Courriel string   `json:"courriel" validate:"required,email"`
	Mdp      string   `json:"mdp" validate:"required,strongpassword"`
	Genres   []string `json:"genres" validate:"required,min=1"`
	Annee    string   `json:"annee" validate:"required,year"`
}

func TestStructValidateValid(t *testing.T) {
	in := registerInput{Courriel: "a@b.com", Mdp: "Secret#123", Genres: []string{"Drame"}, Annee: "1999"}
	if err := Validate(in); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	in := registerInput{Courriel: "not-an-email", Mdp: "weak", Genres: []string{}, Annee: "99"}
	err := Validate(in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	fields := appErr.Details["fields"].([]FieldError)
	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	for _, name := range []string{"courriel", "mdp", "genres", "annee"} {
		if !got[name] {
			t.Errorf("expected a field error for %q, got %v", name, fields)
		}
	}
}
