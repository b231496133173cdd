// Package auth holds the authentication building blocks:
//
//   - auth/jwt       session token signing and verification
//   - auth/password  credential hashing (bcrypt, argon2id)
//   - auth/authctx   typed request context propagation
//
// The top-level package provides the TokenValidator contract used by the
// HTTP auth middleware and the composed Config:
//
//	auth:
//	  jwt:
//	    secret: "change-me"
//	    access_token_ttl: "24h"
//	  password:
//	    algorithm: "bcrypt"
//	    bcrypt_cost: 10
package auth
