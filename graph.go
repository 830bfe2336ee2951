package s3load

import (
	"sync"
)

// Tracks which files feed into which other files (eg a layout included by a page)
// so that a change to one can invalidate everything built from it.  Edges go from
// the dependency to the dependent.  Safe for concurrent use.
type depGraph struct {
	mu    sync.RWMutex
	edges map[string][]string
}

// Tells if destpath can be reached from srcpath.
func (g *depGraph) PathExists(srcpath string, destpath string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pathExists(srcpath, destpath)
}

func (g *depGraph) pathExists(srcpath string, destpath string) bool {
	seen := map[string]bool{srcpath: true}
	q := []string{srcpath}
	for len(q) > 0 {
		var nq []string
		for _, p := range q {
			for _, next := range g.edges[p] {
				if next == destpath {
					return true
				}
				if !seen[next] {
					seen[next] = true
					nq = append(nq, next)
				}
			}
		}
		q = nq
	}
	return false
}

// Add a dependency edge between two files identified by their paths.
// Returns true if edge was added without incurring a cycle,
// returns false if edge would have resulted in a cycle.
func (g *depGraph) AddEdge(srcpath string, destpath string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if srcpath == destpath || g.pathExists(destpath, srcpath) {
		return false
	}
	if g.edgeExists(srcpath, destpath) {
		return true
	}
	if g.edges == nil {
		g.edges = make(map[string][]string)
	}
	g.edges[srcpath] = append(g.edges[srcpath], destpath)
	return true
}

// Returns true if an edge exists between a source and a destination
func (g *depGraph) EdgeExists(srcpath string, destpath string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeExists(srcpath, destpath)
}

func (g *depGraph) edgeExists(srcpath string, destpath string) bool {
	for _, n := range g.edges[srcpath] {
		if n == destpath {
			return true
		}
	}
	return false
}

// Removes a dependency edge between two files
func (g *depGraph) RemoveEdge(srcpath string, destpath string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeEdge(srcpath, destpath)
}

func (g *depGraph) removeEdge(srcpath string, destpath string) bool {
	for index, n := range g.edges[srcpath] {
		if n == destpath {
			slice := g.edges[srcpath]
			g.edges[srcpath] = append(slice[:index:index], slice[index+1:]...)
			return true
		}
	}
	return false
}

// Removes all edges into destpath.  Used before a file is reloaded so that
// includes it no longer uses stop pointing at it.
func (g *depGraph) RemoveEdgesTo(destpath string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for srcpath := range g.edges {
		g.removeEdge(srcpath, destpath)
	}
}

// Returns every file that (transitively) depends on srcpath.
func (g *depGraph) Dependents(srcpath string) (out []string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := map[string]bool{srcpath: true}
	q := []string{srcpath}
	for len(q) > 0 {
		var nq []string
		for _, p := range q {
			for _, next := range g.edges[p] {
				if !seen[next] {
					seen[next] = true
					out = append(out, next)
					nq = append(nq, next)
				}
			}
		}
		q = nq
	}
	return
}
