// Package redis wraps go-redis v9.
//
// Client adds key prefixing and the handful of commands the document store
// needs; TypedStore keeps JSON values under prefixed keys; Component plugs
// the client into the lifecycle registry.
//
//	redis:
//	  addr: "localhost:6379"
//	  key_prefix: "filmotheque"
package redis
