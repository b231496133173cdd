package account

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/filmotheque/resource"
)

// Collection is the store collection holding accounts.
const Collection = "utilisateurs"

// Stored field names.
const (
	fieldCourriel  = "courriel"
	fieldSecret    = "mdp"
	fieldPrivilege = "privilege"
)

// Roles returned by Login.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AdminPrivilege is the privilege level granting the admin role.
const AdminPrivilege = 1

// Account is a registered user.
type Account struct {
	ID         string `json:"id"`
	Courriel   string `json:"courriel"`
	SecretHash string `json:"-"`
	Privilege  int    `json:"privilege"`
}

// Role maps the privilege level to a role name.
func (a *Account) Role() string {
	if a.Privilege == AdminPrivilege {
		return RoleAdmin
	}
	return RoleUser
}

// PrincipalID returns the account id.
func (a *Account) PrincipalID() string { return a.ID }

func (a *Account) fields() resource.Fields {
	return resource.Fields{
		fieldCourriel:  a.Courriel,
		fieldSecret:    a.SecretHash,
		fieldPrivilege: a.Privilege,
	}
}

func fromDocument(d *resource.Document) (*Account, error) {
	p, err := privilegeOf(d.Fields[fieldPrivilege])
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", d.ID, err)
	}
	return &Account{
		ID:         d.ID,
		Courriel:   d.String(fieldCourriel),
		SecretHash: d.String(fieldSecret),
		Privilege:  p,
	}, nil
}

// privilegeOf reads a stored privilege, which older records may hold as a
// numeric string.
func privilegeOf(v any) (int, error) {
	switch p := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(p), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("privilege %q is not numeric", p)
		}
		return n, nil
	}
	return 0, fmt.Errorf("privilege has unexpected type %T", v)
}

// NormalizeCourriel trims and lower-cases an email address.
func NormalizeCourriel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ErrPrivilegeNotNumeric is returned when a request privilege is neither a
// JSON integer nor a string holding one.
var ErrPrivilegeNotNumeric = errors.New("privilege must be numeric")

// Privilege is a request privilege level. It accepts 1 and "1".
type Privilege int

func (p *Privilege) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ErrPrivilegeNotNumeric
		}
		raw = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return ErrPrivilegeNotNumeric
	}
	*p = Privilege(n)
	return nil
}

// SessionClaims are the session token claims: the account's email and id.
type SessionClaims struct {
	gojwt.RegisteredClaims
	Courriel string `json:"courriel"`
	ID       string `json:"id"`
}

// SetDefaults stamps iat, exp and the subject before signing.
func (c *SessionClaims) SetDefaults(now time.Time, ttl time.Duration, issuer string) {
	c.IssuedAt = gojwt.NewNumericDate(now)
	c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	c.Subject = c.ID
	if issuer != "" {
		c.Issuer = issuer
	}
}
