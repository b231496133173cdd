// Package film serves the film catalogue: public listing and lookup, and
// create, update, delete and seeding behind the auth gate.
package film
