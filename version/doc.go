// Package version exposes the build metadata reported by /info and the
// startup banner. Values are stamped with -ldflags and completed from the
// module build info:
//
//	go build -ldflags "-X github.com/kbukum/filmotheque/version.Version=1.2.0" ./cmd/filmotheque
package version
