package middleware

import (
	"net/http"

	"github.com/kbukum/filmotheque/util"
)

// DefaultMaxBodySize applies when no size is configured.
const DefaultMaxBodySize = "1MB"

const defaultMaxBodyBytes = 1 << 20

// BodySizeLimit restricts request bodies to maxSize ("1MB", "512KB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodyBytes)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
