package s3load

import (
	"log/slog"
	"maps"
	"path"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
)

// Data is the structured content loaded from a file (front matter fields, the body
// under "content", decoded yaml/json/toml documents etc).
type Data map[string]any

// Returns a shallow copy of the data.  Nested maps and slices are shared.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	return maps.Clone(d)
}

// Decodes the data into a typed value (usually a pointer to a struct with
// `mapstructure` tags).
func (d Data) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(d))
}

// A Loader turns the raw bytes of a file into Data.  The path is only passed for
// error reporting.
type Loader func(path string, content []byte) (Data, error)

// Reader loads the data of a root anchored path with a given loader.  Readers are
// free to cache results but must return errors from the underlying storage and the
// loader unchanged.
type Reader interface {
	Read(path string, loader Loader) (Data, error)
}

// FileReader is a Reader that can also report where a file came from.
type FileReader interface {
	Reader
	Info(path string) (Src, error)
}

// FSReader reads files from an afero filesystem and caches the loaded data per path.
// It is safe for concurrent use.
type FSReader struct {
	fs    afero.Fs
	cache *gocache.Cache
}

// Creates a reader over fs.  When root is not empty, all paths are treated as
// relative to root within fs.  "" and "." mean the root of fs itself.
func NewFSReader(fs afero.Fs, root string) *FSReader {
	if root != "" {
		root = filepath.Clean(root)
	}
	if root != "" && root != "." && root != string(filepath.Separator) {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &FSReader{
		fs:    fs,
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// The filesystem this reader reads from.
func (r *FSReader) Fs() afero.Fs {
	return r.fs
}

func (r *FSReader) Read(p string, loader Loader) (Data, error) {
	p = cleanPath(p)
	if cached, found := r.cache.Get(p); found {
		return cached.(Data).Clone(), nil
	}
	content, err := afero.ReadFile(r.fs, filepath.FromSlash(p))
	if err != nil {
		return nil, err
	}
	data, err := loader(p, content)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = Data{}
	}
	r.cache.Set(p, data, gocache.NoExpiration)
	return data.Clone(), nil
}

func (r *FSReader) Info(p string) (src Src, err error) {
	p = cleanPath(p)
	src.Path = p
	info, err := r.fs.Stat(filepath.FromSlash(p))
	if err != nil {
		return
	}
	// afero does not expose birth times so Created stays unset here
	src.LastModified = info.ModTime().UTC()
	return
}

// Drops the cached data for a path so the next Read goes to the filesystem.
func (r *FSReader) Invalidate(p string) {
	p = cleanPath(p)
	if _, found := r.cache.Get(p); found {
		slog.Debug("Invalidating cached data", "path", p)
	}
	r.cache.Delete(p)
}

// Drops all cached data.
func (r *FSReader) Flush() {
	r.cache.Flush()
}

func cleanPath(p string) string {
	return path.Join("/", filepath.ToSlash(p))
}
