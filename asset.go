package s3load

import (
	"log/slog"
	"strings"
)

// AssetLoader loads source files into Pages.  The loader for a file is picked by
// its (longest) extension, which is also removed from the destination path.
//
// What happens to a page after its data is loaded is decided by PostProcess, which
// lets the same loader serve plain assets (nil PostProcess) and pages (see
// NewPageLoader).
type AssetLoader struct {
	Reader FileReader

	// Loaders per extension
	Loaders *Extensions[Loader]

	// Applied to every loaded page
	PostProcess PostProcess
}

// Creates an AssetLoader for pages: after loading, the page's date is derived
// (see DeriveDate) and any subextension is split off the destination path (see
// SplitSubext).
func NewPageLoader(reader FileReader, loaders *Extensions[Loader], fallback DateFallback) *AssetLoader {
	return &AssetLoader{
		Reader:      reader,
		Loaders:     loaders,
		PostProcess: Chain(DeriveDate(fallback), SplitSubext),
	}
}

// Assigns a loader to some extensions.
func (a *AssetLoader) Set(exts []string, loader Loader) *AssetLoader {
	a.Loaders.SetAll(exts, loader)
	return a
}

// Tells if a path has a loader registered for it.
func (a *AssetLoader) Handles(path string) bool {
	_, _, found := a.Loaders.Search(path)
	return found
}

// Load loads the file at path as a page.  found is false if no loader is
// registered for the path's extension.
func (a *AssetLoader) Load(path string) (page Page, found bool, err error) {
	ext, loader, found := a.Loaders.Search(path)
	if !found {
		return
	}

	src, err := a.Reader.Info(path)
	if err != nil {
		return page, true, err
	}
	if src.Path == "" {
		src.Path = path
	}
	page = Page{
		Src:  src,
		Dest: Dest{Path: trimExt(src.Path, ext)},
	}

	if page.Data, err = a.LoadData(page, src.Path, loader); err != nil {
		slog.Error("Error loading page data", "path", src.Path, "error", err)
		return page, true, err
	}

	if a.PostProcess != nil {
		if page, err = a.PostProcess(page); err != nil {
			return page, true, err
		}
	}
	return page, true, nil
}

// Loads the data for a page.  The data returned is owned by the caller.
func (a *AssetLoader) LoadData(page Page, path string, loader Loader) (Data, error) {
	data, err := a.Reader.Read(path, loader)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = Data{}
	}
	return data, nil
}

func trimExt(p string, ext string) string {
	if n := len(p) - len(ext); n >= 0 && strings.EqualFold(p[n:], ext) {
		return p[:n]
	}
	return p
}
