// Package util holds small string helpers shared by the server and the
// store drivers: size parsing, DSN masking and text escaping.
package util
