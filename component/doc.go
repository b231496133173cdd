// Package component defines the lifecycle contract shared by infrastructure
// pieces and the Registry that starts them in order and stops them in
// reverse.
package component
