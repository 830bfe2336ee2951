package s3load

import (
	"path"
	"slices"
	"strings"
)

// Extensions maps file extensions (eg ".md", ".html.njk") to a value - typically a
// Loader or a directory used to resolve includes.
//
// Lookups match on the longest registered suffix of a file's name so that
// multi part extensions like ".html.njk" win over ".njk" when both are registered.
// The empty extension "" acts as the default entry and only matches when nothing
// else does.
//
// Registries are meant to be populated during setup and only read afterwards.
// Once sealed any further Set calls panic.
type Extensions[V any] struct {
	values map[string]V

	// registered (non default) extensions, longest first
	keys []string

	defaultValue V
	hasDefault   bool
	sealed       bool
}

// Creates an empty registry with no default entry.
func NewExtensions[V any]() *Extensions[V] {
	return &Extensions[V]{values: make(map[string]V)}
}

// Creates a registry whose default entry is set to the given value.
func NewExtensionsWithDefault[V any](value V) *Extensions[V] {
	return NewExtensions[V]().Set("", value)
}

// Registers (or overwrites) the value for an exact extension.  Extensions are
// compared case insensitively.  Passing "" sets the default entry.
func (e *Extensions[V]) Set(ext string, value V) *Extensions[V] {
	if e.sealed {
		panic("s3load: extension registry is sealed, cannot set " + ext)
	}
	if e.values == nil {
		e.values = make(map[string]V)
	}
	ext = strings.ToLower(ext)
	if ext == "" {
		e.defaultValue = value
		e.hasDefault = true
		return e
	}
	if _, exists := e.values[ext]; !exists {
		e.keys = append(e.keys, ext)
		slices.SortStableFunc(e.keys, func(a, b string) int { return len(b) - len(a) })
	}
	e.values[ext] = value
	return e
}

// Registers the same value for several extensions.
func (e *Extensions[V]) SetAll(exts []string, value V) *Extensions[V] {
	for _, ext := range exts {
		e.Set(ext, value)
	}
	return e
}

// Returns the value registered for an exact extension (no suffix matching).
func (e *Extensions[V]) Get(ext string) (value V, found bool) {
	ext = strings.ToLower(ext)
	if ext == "" {
		return e.defaultValue, e.hasDefault
	}
	value, found = e.values[ext]
	return
}

// Search returns the extension and value whose extension is the longest
// registered suffix of the file name in fullpath.  If no extension matches the
// default entry is returned (with ext == "").  found is false only when nothing
// matched and no default was configured.
func (e *Extensions[V]) Search(fullpath string) (ext string, value V, found bool) {
	name := strings.ToLower(path.Base(fullpath))
	for _, key := range e.keys {
		if strings.HasSuffix(name, key) {
			return key, e.values[key], true
		}
	}
	if e.hasDefault {
		return "", e.defaultValue, true
	}
	return "", value, false
}

// Lists all registered extensions (excluding the default), longest first.
func (e *Extensions[V]) Keys() []string {
	return slices.Clone(e.keys)
}

// Marks the end of the configuration phase.  Lookups remain safe for concurrent use
// while no writers exist, which sealing guarantees.
func (e *Extensions[V]) Seal() *Extensions[V] {
	e.sealed = true
	return e
}

func (e *Extensions[V]) Sealed() bool {
	return e.sealed
}
