// Package hash provides the xxHash64 wrapper used to key the
// user-defined type registry by class name.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a registry class name, used by the
// registry package as the key of its constructor lookup table.
func ID(className string) uint64 {
	return xxhash.Sum64String(className)
}
