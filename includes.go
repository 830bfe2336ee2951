package s3load

import "log/slog"

// Default directory (relative to the source root) holding includes.
const DefaultIncludesDir = "_includes"

// IncludesLoader loads files referenced from templates (layouts, partials, data
// files).  References starting with "." are resolved against the referencing
// file, everything else against the includes directory registered for the
// reference's extension.
type IncludesLoader struct {
	Reader Reader

	// Includes directory per extension.  The default entry is the global
	// includes directory.
	Paths *Extensions[string]

	// Loader to use per extension.  References with no registered loader are not
	// handled by this loader.
	Loaders *Extensions[Loader]
}

func NewIncludesLoader(reader Reader, includesDir string) *IncludesLoader {
	return &IncludesLoader{
		Reader:  reader,
		Paths:   NewExtensionsWithDefault(includesDir),
		Loaders: NewExtensions[Loader](),
	}
}

// Assigns a loader to some extensions.
func (l *IncludesLoader) Set(exts []string, loader Loader) *IncludesLoader {
	l.Loaders.SetAll(exts, loader)
	return l
}

// Assigns an includes directory to some extensions.
func (l *IncludesLoader) SetPath(exts []string, dir string) *IncludesLoader {
	l.Paths.SetAll(exts, dir)
	return l
}

// Ends the configuration of this loader.
func (l *IncludesLoader) Seal() {
	l.Paths.Seal()
	l.Loaders.Seal()
}

// Load resolves ref (optionally relative to the file at from) and reads it with the
// loader registered for its extension.  found is false when no loader handles ref,
// which is not an error.  Errors from the reader are returned unchanged.
func (l *IncludesLoader) Load(ref string, from string) (resolved string, data Data, found bool, err error) {
	_, loader, found := l.Loaders.Search(ref)
	if !found {
		return "", nil, false, nil
	}

	resolved, err = ResolvePath(ref, from, l.Paths)
	if err != nil {
		slog.Error("Cannot resolve include", "ref", ref, "error", err)
		return "", nil, true, panicOrError(err)
	}

	data, err = l.Reader.Read(resolved, loader)
	return resolved, data, true, err
}
