// Package account implements user registration, login and bearer token
// resolution over the document store.
//
// Accounts live in the "utilisateurs" collection with the fields courriel,
// mdp (the password hash) and privilege. The hash never leaves this package:
// Account.SecretHash is excluded from JSON and cleared after verification.
package account
