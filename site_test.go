package s3load

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T, files map[string]string) *Site {
	t.Helper()
	site := &Site{Fs: memFs(t, files), NoFileDates: true, Workers: 3}
	return site.Init()
}

func TestSite_LoadPages(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/posts/2019-01-01_hello-world.md": "# Hello World\n",
		"/posts/007_intro.md":              "---\ntitle: Intro\n---\n",
		"/styles.css.njk":                  "body{}",
		"/about.md":                        "---\ndate: 2020-06-01\n---\nabout",
		"/_includes/layout.njk":            "layout",
		"/_drafts/x.md":                    "draft",
		"/.hidden.md":                      "hidden",
		"/image.png":                       "png",
	})

	pages, err := site.LoadPages()
	require.NoError(t, err)
	require.Len(t, pages, 4)

	// sorted by date, undated last
	require.Equal(t, "/posts/007_intro.md", pages[0].Src.Path)
	require.Equal(t, "/posts/intro", pages[0].Dest.Path)
	require.Equal(t, "Intro", pages[0].Data["title"])

	require.Equal(t, "/posts/2019-01-01_hello-world.md", pages[1].Src.Path)
	require.Equal(t, Dest{Path: "/posts/hello-world", Ext: ""}, pages[1].Dest)
	require.Equal(t, "Hello World", pages[1].Data["title"])
	date, _ := pages[1].Date()
	require.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), date)

	require.Equal(t, "/about.md", pages[2].Src.Path)
	date, _ = pages[2].Date()
	require.Equal(t, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), date)

	require.Equal(t, "/styles.css.njk", pages[3].Src.Path)
	require.Equal(t, Dest{Path: "/styles", Ext: ".css"}, pages[3].Dest)
	_, ok := pages[3].Date()
	require.False(t, ok)
}

func TestSite_LoadPagesCollectsErrors(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/good.md": "good",
		"/bad.md":  "---\ndate: not-a-date\n---\n",
	})
	pages, err := site.LoadPages()
	require.Len(t, pages, 1)
	require.Equal(t, "/good.md", pages[0].Src.Path)
	require.True(t, errors.Is(err, ErrInvalidDate))
	require.Contains(t, err.Error(), "/bad.md")
}

func TestSite_FileDatesFallback(t *testing.T) {
	site := (&Site{Fs: memFs(t, map[string]string{"/a.md": "a"})}).Init()
	page, found, err := site.LoadPage("/a.md")
	require.NoError(t, err)
	require.True(t, found)
	date, ok := page.Date()
	require.True(t, ok)
	require.Equal(t, page.Src.LastModified, date)
}

func TestSite_CustomDateFallback(t *testing.T) {
	fixed := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	site := &Site{
		Fs:           memFs(t, map[string]string{"/a.md": "a"}),
		DateFallback: func(Src) (time.Time, bool) { return fixed, true },
	}
	site.Init()
	page, _, err := site.LoadPage("a.md")
	require.NoError(t, err)
	date, _ := page.Date()
	require.Equal(t, fixed, date)
}

func TestSite_LoadPageUnhandled(t *testing.T) {
	site := newTestSite(t, map[string]string{"/a.png": "png"})
	_, found, err := site.LoadPage("/a.png")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSite_CustomLoaderBeforeLoading(t *testing.T) {
	site := newTestSite(t, map[string]string{"/feed.xml.tmpl": "<rss/>", "/data.page.yml": "title: Data"})
	site.Pages.Set([]string{".page.yml"}, YAMLLoader)

	pages, err := site.LoadPages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, Dest{Path: "/data", Ext: ""}, pages[0].Dest)
	require.Equal(t, "Data", pages[0].Data["title"])
	require.Equal(t, Dest{Path: "/feed", Ext: ".xml"}, pages[1].Dest)

	// configuration is over once loading started
	require.Panics(t, func() { site.Pages.Set([]string{".txt"}, TextLoader) })
	require.Panics(t, func() { site.Includes.SetPath([]string{".css"}, "_styles") })
}

func TestSite_IncludePaths(t *testing.T) {
	site := &Site{
		Fs: memFs(t, map[string]string{
			"/_styles/main.css":  "body{}",
			"/_includes/nav.njk": "nav",
		}),
		IncludePaths: map[string]string{".css": "_styles"},
	}
	site.Init()

	resolved, data, found, err := site.Include("main.css", "")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "/_styles/main.css", resolved)
	require.Equal(t, "body{}", data[ContentKey])

	resolved, _, _, err = site.Include("nav.njk", "/index.md")
	require.NoError(t, err)
	require.Equal(t, "/_includes/nav.njk", resolved)
}

func TestSite_InvalidateDependents(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/_includes/base.njk":   "base",
		"/_includes/layout.njk": "layout",
		"/posts/a.md":           "a",
	})

	var included []string
	site.Hooks.OnIncludeLoaded(func(resolved string, from string) {
		included = append(included, resolved+"<-"+from)
	})

	_, _, _, err := site.Include("layout.njk", "/posts/a.md")
	require.NoError(t, err)
	_, _, _, err = site.Include("base.njk", "/_includes/layout.njk")
	require.NoError(t, err)
	require.Equal(t, []string{
		"/_includes/layout.njk<-/posts/a.md",
		"/_includes/base.njk<-/_includes/layout.njk",
	}, included)

	invalidated := site.Invalidate("/_includes/base.njk")
	require.ElementsMatch(t, []string{"/_includes/base.njk", "/_includes/layout.njk", "/posts/a.md"}, invalidated)

	invalidated = site.Invalidate("/posts/a.md")
	require.Equal(t, []string{"/posts/a.md"}, invalidated)
}

func TestSite_IncludeCycleIsNotRecorded(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"/_includes/a.njk": "a",
		"/_includes/b.njk": "b",
	})
	_, _, _, err := site.Include("a.njk", "/_includes/b.njk")
	require.NoError(t, err)
	_, _, _, err = site.Include("b.njk", "/_includes/a.njk")
	require.NoError(t, err)

	require.True(t, site.deps.EdgeExists("/_includes/a.njk", "/_includes/b.njk"))
	require.False(t, site.deps.EdgeExists("/_includes/b.njk", "/_includes/a.njk"))
}

func TestSite_Hooks(t *testing.T) {
	site := newTestSite(t, map[string]string{"/a.md": "a", "/b.md": "b"})
	var events []string
	site.Hooks.OnPhaseEnd(PhaseConfigure, func(ctx *LoadContext) { events = append(events, "configured") })
	site.Hooks.OnPhaseStart(PhaseLoad, func(ctx *LoadContext) { events = append(events, "start "+ctx.CurrentPhase.String()) })
	site.Hooks.OnPageLoaded(func(ctx *LoadContext, p Page) { events = append(events, p.Src.Path) })
	site.Hooks.OnPhaseEnd(PhaseLoad, func(ctx *LoadContext) { events = append(events, "end") })

	_, err := site.LoadPages()
	require.NoError(t, err)
	_, err = site.LoadPages()
	require.NoError(t, err)
	require.Equal(t, []string{
		"configured",
		"start Load", "/a.md", "/b.md", "end",
		"start Load", "/a.md", "/b.md", "end",
	}, events)
}

func TestSortPages(t *testing.T) {
	d1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	pages := []Page{
		newPage("/c.md", "/c", Data{}),
		newPage("/b.md", "/b", Data{DateKey: d2}),
		newPage("/a.md", "/a", Data{}),
		newPage("/z.md", "/z", Data{DateKey: d1}),
		newPage("/y.md", "/y", Data{DateKey: d1}),
	}
	SortPages(pages)
	var got []string
	for _, p := range pages {
		got = append(got, p.Src.Path)
	}
	require.Equal(t, []string{"/y.md", "/z.md", "/b.md", "/a.md", "/c.md"}, got)
}

func TestSite_RelativeSrcDirOnOsFs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "about.md"), []byte("about"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts", "2019-01-01_hello.md"), []byte("# Hello\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, srcDir := range []string{".", "", "./"} {
		site := (&Site{SrcDir: srcDir, Fs: afero.NewOsFs(), NoFileDates: true}).Init()
		require.True(t, filepath.IsAbs(site.SrcDir), srcDir)

		pages, err := site.LoadPages()
		require.NoError(t, err, srcDir)
		require.Len(t, pages, 2, srcDir)
		require.Equal(t, "/posts/2019-01-01_hello.md", pages[0].Src.Path)
		require.Equal(t, "/posts/hello", pages[0].Dest.Path)
		require.Equal(t, "/about.md", pages[1].Src.Path)
	}
}

func TestSite_ConcurrentFirstUse(t *testing.T) {
	site := &Site{Fs: memFs(t, map[string]string{"/a.md": "a"}), NoFileDates: true}
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = site.LoadPage("/a.md")
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestSite_ConfigureStartHook(t *testing.T) {
	hooks := NewHookRegistry()
	var events []string
	hooks.OnPhaseStart(PhaseConfigure, func(ctx *LoadContext) { events = append(events, "start "+ctx.CurrentPhase.String()) })
	hooks.OnPhaseEnd(PhaseConfigure, func(ctx *LoadContext) { events = append(events, "end "+ctx.CurrentPhase.String()) })

	site := (&Site{Fs: memFs(t, map[string]string{"/a.md": "a"}), NoFileDates: true, Hooks: hooks}).Init()
	require.Equal(t, []string{"start Configure"}, events)
	_, err := site.LoadPages()
	require.NoError(t, err)
	require.Equal(t, []string{"start Configure", "end Configure"}, events)
}

func TestSite_LoadPagesEndsPhaseOnWalkError(t *testing.T) {
	site := (&Site{SrcDir: "/missing", Fs: memFs(t, map[string]string{"/a.md": "a"}), NoFileDates: true}).Init()
	var ended *LoadContext
	site.Hooks.OnPhaseEnd(PhaseLoad, func(ctx *LoadContext) { ended = ctx })

	pages, err := site.LoadPages()
	require.Error(t, err)
	require.Nil(t, pages)
	require.NotNil(t, ended)
	require.Len(t, ended.Errors, 1)
	require.ErrorIs(t, ended.Errors[0], err)
}
