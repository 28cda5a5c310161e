// Package converter resolves and caches conversions between payload
// representations at processor boundaries. Lookup walks three tiers: exact
// (source, target) converters, wildcard converters registered for a target
// only, and built-in structural fallbacks. Successful resolutions are
// memoized per concrete source type.
//
// Registration is rare (route construction time) while lookups are hot, so
// the registry keeps its state in a copy-on-write snapshot swapped
// atomically on registration. Lookups racing a registration may briefly
// miss the new converter; the registry is weakly consistent, not
// linearizable.
package converter

import (
	"reflect"
	"sync"
	"sync/atomic"

	"drover/pkg/errors"
)

// Func converts a value to the target type the converter was registered
// for. A nil result means "no value"; whether that is a valid outcome
// depends on the allow-nil flag supplied at registration.
type Func func(v interface{}) (interface{}, error)

// TargetFunc is a wildcard converter registered for a target type with any
// source. It reports applied=false to decline a value it cannot handle, in
// which case lookup falls through to the next tier.
type TargetFunc func(v interface{}, target reflect.Type) (interface{}, bool, error)

type pair struct {
	src reflect.Type
	dst reflect.Type
}

type exactEntry struct {
	fn       Func
	allowNil bool
}

// snapshot is the immutable registration state. Registration builds a new
// snapshot and swaps the pointer; the memo is per-snapshot so stale cached
// resolutions die with the snapshot they were computed against.
type snapshot struct {
	exact    map[pair]exactEntry
	wildcard map[reflect.Type][]TargetFunc
	memo     *sync.Map // pair -> TargetFunc (the winning resolver)
}

type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]

	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(&snapshot{
		exact:    map[pair]exactEntry{},
		wildcard: map[reflect.Type][]TargetFunc{},
		memo:     &sync.Map{},
	})
	return r
}

// Register adds an exact converter for the (src, dst) pair. A nil result
// from fn is reported as a conversion error; use RegisterAllowNil for
// converters whose nil result is meaningful.
func (r *Registry) Register(src, dst reflect.Type, fn Func) {
	r.register(src, dst, fn, false)
}

// RegisterAllowNil adds an exact converter whose nil result means
// "no value" rather than "cannot convert".
func (r *Registry) RegisterAllowNil(src, dst reflect.Type, fn Func) {
	r.register(src, dst, fn, true)
}

func (r *Registry) register(src, dst reflect.Type, fn Func, allowNil bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.snap.Load()
	next := &snapshot{
		exact:    make(map[pair]exactEntry, len(old.exact)+1),
		wildcard: make(map[reflect.Type][]TargetFunc, len(old.wildcard)),
		memo:     &sync.Map{},
	}
	for k, v := range old.exact {
		next.exact[k] = v
	}
	for k, v := range old.wildcard {
		next.wildcard[k] = v
	}
	next.exact[pair{src, dst}] = exactEntry{fn: fn, allowNil: allowNil}
	r.snap.Store(next)
}

// RegisterForTarget adds a wildcard converter probed for any source value
// headed to dst. Wildcard converters are probed in registration order and
// only after exact converters.
func (r *Registry) RegisterForTarget(dst reflect.Type, fn TargetFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.snap.Load()
	next := &snapshot{
		exact:    make(map[pair]exactEntry, len(old.exact)),
		wildcard: make(map[reflect.Type][]TargetFunc, len(old.wildcard)+1),
		memo:     &sync.Map{},
	}
	for k, v := range old.exact {
		next.exact[k] = v
	}
	for k, v := range old.wildcard {
		next.wildcard[k] = append([]TargetFunc(nil), v...)
	}
	next.wildcard[dst] = append(next.wildcard[dst], fn)
	r.snap.Store(next)
}

// Convert coerces v to the target type. It returns a
// *errors.ConversionError once every tier is exhausted; any other error
// came from a converter that matched but failed.
func (r *Registry) Convert(v interface{}, target reflect.Type) (interface{}, error) {
	if v == nil {
		return convertNil(target)
	}

	snap := r.snap.Load()
	src := reflect.TypeOf(v)
	key := pair{src, target}

	if cached, ok := snap.memo.Load(key); ok {
		out, applied, err := cached.(TargetFunc)(v, target)
		if err != nil {
			return nil, err
		}
		if applied {
			r.hits.Add(1)
			return out, nil
		}
		// A memoized wildcard declined this particular value; fall
		// through to a full scan without the memo.
	}
	r.misses.Add(1)

	resolver, out, err := r.resolve(snap, v, src, target)
	if err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, &errors.ConversionError{Source: src, Target: target}
	}
	snap.memo.Store(key, resolver)
	return out, nil
}

// resolve walks the lookup tiers. It returns the winning resolver and the
// converted value, or (nil, nil, nil) when no tier applies.
func (r *Registry) resolve(snap *snapshot, v interface{}, src, target reflect.Type) (TargetFunc, interface{}, error) {
	if entry, ok := snap.exact[pair{src, target}]; ok {
		resolver := exactResolver(entry, src)
		out, _, err := resolver(v, target)
		return resolver, out, err
	}

	for _, fn := range snap.wildcard[target] {
		out, applied, err := fn(v, target)
		if err != nil {
			return nil, nil, err
		}
		if applied {
			return fn, out, nil
		}
	}

	for _, fn := range builtinFallbacks {
		out, applied, err := fn(v, target)
		if err != nil {
			return nil, nil, err
		}
		if applied {
			return fn, out, nil
		}
	}

	return nil, nil, nil
}

func exactResolver(entry exactEntry, src reflect.Type) TargetFunc {
	return func(v interface{}, target reflect.Type) (interface{}, bool, error) {
		out, err := entry.fn(v)
		if err != nil {
			return nil, false, err
		}
		if out == nil && !entry.allowNil {
			return nil, false, &errors.ConversionError{Source: src, Target: target}
		}
		return out, true, nil
	}
}

func convertNil(target reflect.Type) (interface{}, error) {
	switch target.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return nil, nil
	}
	return nil, &errors.ConversionError{Source: nil, Target: target}
}

// Stats reports memo hits and full-scan lookups since startup.
func (r *Registry) Stats() (hits, misses uint64) {
	return r.hits.Load(), r.misses.Load()
}

// To converts v to T through the registry. A nil conversion result yields
// the zero value of T.
func To[T any](r *Registry, v interface{}) (T, error) {
	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	out, err := r.Convert(v, target)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	t, ok := out.(T)
	if !ok {
		return zero, &errors.ConversionError{Source: reflect.TypeOf(out), Target: target}
	}
	return t, nil
}
