package s3load

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSite_WatchInvalidatesChangedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("---\ntitle: One\n---\n"), 0o644))

	site := (&Site{SrcDir: root, NoFileDates: true, ReloadFrequency: 50 * time.Millisecond}).Init()
	changed := make(chan []string, 4)
	site.Hooks.OnChanged(func(paths []string) { changed <- paths })

	page, _, err := site.LoadPage("/a.md")
	require.NoError(t, err)
	require.Equal(t, "One", page.Data["title"])

	require.NoError(t, site.StartWatching())
	defer site.StopWatching()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("---\ntitle: Second\n---\n"), 0o644))
	select {
	case paths := <-changed:
		require.Contains(t, paths, "/a.md")
	case <-time.After(5 * time.Second):
		t.Fatal("no change observed")
	}

	page, _, err = site.LoadPage("/a.md")
	require.NoError(t, err)
	require.Equal(t, "Second", page.Data["title"])
}
