package s3load

import (
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// The Site ties the loading layer together.  It owns the reader (and its cache),
// the loader used for includes and the loader used for pages, along with the
// configuration that decides which files are pages and where includes live.
//
// A Site goes through two phases.  During configuration loaders and include paths
// can be registered (after Init, via Includes.Set / Pages.Set etc).  The first call
// to LoadPages, LoadPage or Include seals the registries and from then on the Site
// is safe to use from multiple goroutines.
type Site struct {
	// SrcDir is the root of all sources.  All page and include paths are root
	// anchored paths within SrcDir (eg /posts/hello.md).
	SrcDir string

	// Directory (within SrcDir) holding includes.  Defaults to "_includes".
	IncludesDir string

	// Per extension overrides of IncludesDir, eg {".css": "_styles"}
	IncludePaths map[string]string

	// Filesystem to read from.  Defaults to the OS filesystem.
	Fs afero.Fs

	// Number of pages loaded concurrently.  Defaults to the number of CPUs.
	Workers int

	// Disables using file creation/modification times as the date of pages that
	// have no date in their data or file name.
	NoFileDates bool

	// Overrides how pages without a date get one.  Takes precedence over NoFileDates.
	DateFallback DateFallback

	// When walking the source root for files, this callback specify which directories
	// are to be ignored (in addition to "_" and "." prefixed ones).
	IgnoreDirFunc func(dirpath string) bool

	// When walking the source root for files, this callback specify which files
	// are to be ignored (in addition to "_" and "." prefixed ones).
	IgnoreFileFunc func(filepath string) bool

	// How often changes collected in watch mode are applied.
	ReloadFrequency time.Duration

	Hooks *HookRegistry

	Reader   *FSReader
	Includes *IncludesLoader
	Pages    *AssetLoader

	deps          depGraph
	sealOnce      sync.Once
	reloadWatcher *watcher.Watcher
	initialized   bool
}

// Initializes the Site and registers the default loaders.  Custom loaders can be
// registered after Init and before anything is loaded.  Configure phase start hooks
// only fire if Hooks was set before Init.
func (s *Site) Init() *Site {
	s.SrcDir = expandUser(s.SrcDir)
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if _, ok := s.Fs.(*afero.OsFs); ok {
		// relative roots are relative to the working directory
		if s.SrcDir == "" {
			s.SrcDir = "."
		}
		if abs, err := filepath.Abs(s.SrcDir); err != nil {
			slog.Warn("Cannot make source dir absolute", "srcdir", s.SrcDir, "error", err)
		} else {
			s.SrcDir = abs
		}
	}
	if s.IncludesDir == "" {
		s.IncludesDir = DefaultIncludesDir
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	if s.Hooks == nil {
		s.Hooks = NewHookRegistry()
	}

	fallback := s.DateFallback
	if fallback == nil && !s.NoFileDates {
		fallback = FileDates
	}

	s.Reader = NewFSReader(s.Fs, s.SrcDir)

	s.Includes = NewIncludesLoader(s.Reader, s.IncludesDir)
	s.Includes.Set([]string{".njk", ".tmpl", ".html", ".htm"}, FrontMatterLoader)
	s.Includes.Set([]string{".md", ".markdown"}, MarkdownLoader)
	s.Includes.Set([]string{".yml", ".yaml"}, YAMLLoader)
	s.Includes.Set([]string{".toml"}, TOMLLoader)
	s.Includes.Set([]string{".json"}, JSONLoader)
	s.Includes.Set([]string{".css", ".js", ".txt"}, TextLoader)
	for ext, dir := range s.IncludePaths {
		s.Includes.SetPath([]string{ext}, dir)
	}

	s.Pages = NewPageLoader(s.Reader, NewExtensions[Loader](), fallback)
	s.Pages.Set([]string{".md", ".markdown"}, MarkdownLoader)
	s.Pages.Set([]string{".njk", ".tmpl", ".html", ".htm"}, FrontMatterLoader)

	s.initialized = true
	s.Hooks.emitPhaseStart(&LoadContext{Site: s, CurrentPhase: PhaseConfigure})
	return s
}

// Ends the configuration phase.  Safe to call multiple times.
func (s *Site) seal() {
	s.sealOnce.Do(func() {
		if !s.initialized {
			s.Init()
		}
		s.Includes.Seal()
		s.Pages.Loaders.Seal()
		s.Hooks.emitPhaseEnd(&LoadContext{Site: s, CurrentPhase: PhaseConfigure})
	})
}

// Lists the root anchored paths of all files in the source root that have a page
// loader registered, skipping the includes dir and anything whose name starts
// with "_" or ".".
func (s *Site) ListSources() (paths []string, err error) {
	s.seal()
	fs := s.Reader.Fs()
	includes := ResolveRooted("", s.IncludesDir)
	err = afero.Walk(fs, string(filepath.Separator), func(fullpath string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("Error in path", "path", fullpath, "error", err)
			return err
		}
		p := cleanPath(fullpath)
		name := path.Base(p)
		hidden := p != "/" && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, "."))

		if info.IsDir() {
			if p == "/" {
				return nil
			}
			if hidden || p == includes || (s.IgnoreDirFunc != nil && s.IgnoreDirFunc(p)) {
				return filepath.SkipDir
			}
			return nil
		}

		if hidden || (s.IgnoreFileFunc != nil && s.IgnoreFileFunc(p)) {
			return nil
		}
		if s.Pages.Handles(p) {
			paths = append(paths, p)
		}
		return nil
	})
	return
}

// Loads a single page.  found is false when no page loader handles path.
func (s *Site) LoadPage(p string) (Page, bool, error) {
	s.seal()
	return s.Pages.Load(cleanPath(p))
}

type pageResult struct {
	page  Page
	found bool
	err   error
}

// Loads every page in the source root using up to Workers goroutines.  Pages
// are returned sorted (see SortPages).  Pages that fail to load are skipped and
// their errors are returned joined, together with the pages that did load.
func (s *Site) LoadPages() ([]Page, error) {
	s.seal()
	ctx := &LoadContext{Site: s, CurrentPhase: PhaseLoad}
	s.Hooks.emitPhaseStart(ctx)

	paths, err := s.ListSources()
	if err != nil {
		ctx.AddError(err)
		s.Hooks.emitPhaseEnd(ctx)
		return nil, err
	}

	// failed pages do not stop the others so every goroutine returns nil
	results := make([]pageResult, len(paths))
	var g errgroup.Group
	g.SetLimit(s.Workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r := &results[i]
			r.page, r.found, r.err = s.Pages.Load(p)
			return nil
		})
	}
	g.Wait()

	for _, r := range results {
		if r.err != nil {
			ctx.AddError(r.err)
		} else if r.found {
			ctx.Pages = append(ctx.Pages, r.page)
		}
	}
	SortPages(ctx.Pages)
	for _, page := range ctx.Pages {
		s.Hooks.emitPageLoaded(ctx, page)
	}
	s.Hooks.emitPhaseEnd(ctx)

	slog.Info("Loaded pages", "srcdir", s.SrcDir, "pages", len(ctx.Pages), "errors", len(ctx.Errors))
	return ctx.Pages, errors.Join(ctx.Errors...)
}

// Loads an include referenced from the file at from (which may be empty for
// root anchored references).  The include is recorded as a dependency of from so
// changes to it invalidate from as well.
func (s *Site) Include(ref string, from string) (resolved string, data Data, found bool, err error) {
	s.seal()
	resolved, data, found, err = s.Includes.Load(ref, from)
	if !found || err != nil {
		return
	}
	if from != "" {
		if !s.deps.AddEdge(resolved, cleanPath(from)) {
			slog.Warn("Include cycle detected", "include", resolved, "from", from)
		}
	}
	s.Hooks.emitIncludeLoaded(resolved, from)
	return
}

// Drops the cached data of the given source paths and of every file that depends
// on them.  Returns all paths that were invalidated.
func (s *Site) Invalidate(paths ...string) (invalidated []string) {
	seen := map[string]bool{}
	for _, p := range paths {
		p = cleanPath(p)
		for _, q := range append([]string{p}, s.deps.Dependents(p)...) {
			if !seen[q] {
				seen[q] = true
				s.Reader.Invalidate(q)
				invalidated = append(invalidated, q)
			}
		}
		// p will record its includes again when it is next rendered
		s.deps.RemoveEdgesTo(p)
	}
	return
}

// Sorts pages by date (oldest first) with undated pages last, breaking ties by
// source path.
func SortPages(pages []Page) {
	slices.SortStableFunc(pages, func(a, b Page) int {
		da, oka := a.Date()
		db, okb := b.Date()
		switch {
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		case oka && okb && !da.Equal(db):
			return da.Compare(db)
		}
		return strings.Compare(a.Src.Path, b.Src.Path)
	})
}
