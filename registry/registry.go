// Package registry implements the user-defined type reconstruction table
// spec.md section 9 calls for in place of the source's reflection-based
// instantiation: an explicit string-name to constructor mapping,
// populated at program start, with unknown names surfacing as decode
// errors rather than triggering dynamic class loading.
//
// Grounded on internal/collision/tracker.go's hash-keyed table with an
// explicit collision check, and internal/hash/id.go's xxhash-keyed
// lookup idiom.
package registry

import (
	"fmt"
	"sync"

	"github.com/lithiumdb/vcodec/errs"
	"github.com/lithiumdb/vcodec/internal/hash"
)

// Constructor builds a value of some user-defined external type from its
// lexical payload (the string half of the "class_name payload" literal
// the default decoder reads).
type Constructor func(lexical string) (any, error)

type entry struct {
	className string
	ctor      Constructor
}

var (
	mu    sync.RWMutex
	table = make(map[uint64]entry)
)

// Register associates className with ctor. It panics if a different
// class name was already registered under the same hash key, the same
// defensive posture internal/collision/tracker.go takes for a metric-name
// hash collision: registration happens at program start, so a collision
// here is a programming error to fix, not a runtime condition to recover
// from.
func Register(className string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()

	key := hash.ID(className)
	if existing, ok := table[key]; ok && existing.className != className {
		panic(fmt.Errorf("%w: %q and %q", errs.ErrRegistryHashCollision, existing.className, className))
	}

	table[key] = entry{className: className, ctor: ctor}
}

// Lookup returns the constructor registered for className, if any.
func Lookup(className string) (Constructor, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := table[hash.ID(className)]
	if !ok || e.className != className {
		return nil, false
	}

	return e.ctor, true
}

// Construct resolves className through the registry and invokes its
// constructor with lexical, wrapping failures per spec.md section 7's
// failure kind 3 (user-defined instantiation failure).
func Construct(className, lexical string) (any, error) {
	ctor, ok := Lookup(className)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUserTypeNotRegistered, className)
	}

	v, err := ctor(lexical)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errs.ErrUserTypeConstruction, className, err)
	}

	return v, nil
}

// Reset clears the registry. It exists for test isolation between
// packages that register conflicting names; production callers should
// not need it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	table = make(map[uint64]entry)
}
