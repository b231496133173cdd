// Package security builds TLS configuration for the HTTP server and for
// outbound store connections.
//
//	tls:
//	  enabled: true
//	  cert_file: /etc/filmotheque/tls.crt
//	  key_file: /etc/filmotheque/tls.key
package security
