package s3load

import (
	"path"
	"strings"
)

// Tells whether a reference is relative to the file referencing it (eg "./a.njk"
// or "../partials/b.njk") rather than anchored at a configured root.
func IsRelative(ref string) bool {
	return strings.HasPrefix(ref, ".")
}

// Resolves a relative reference against the directory of the file it came from.
// The result is always rooted at "/" and cleaned, so ".." can never climb above
// the root.  This is path normalization only and not a sandbox.
func ResolveRelative(ref string, from string) (string, error) {
	if from == "" {
		return "", &ReferenceError{Ref: ref}
	}
	return path.Join("/", path.Dir(from), ref), nil
}

// Resolves a root anchored reference inside dir.
func ResolveRooted(ref string, dir string) string {
	return path.Join("/", dir, ref)
}

// Resolves a reference to an absolute, root anchored path.
//
// Relative references are resolved against the directory of from.  All other
// references are resolved against the directory registered in overrides for the
// reference's extension (or the root if overrides is nil or has no match).
func ResolvePath(ref string, from string, overrides *Extensions[string]) (string, error) {
	if IsRelative(ref) {
		return ResolveRelative(ref, from)
	}
	dir := ""
	if overrides != nil {
		_, dir, _ = overrides.Search(ref)
	}
	return ResolveRooted(ref, dir), nil
}
