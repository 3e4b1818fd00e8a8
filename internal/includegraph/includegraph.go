// Package includegraph tracks the .include/.incbin edges between files as
// a directed, cycle-tolerant graph, and derives translation units from it:
// a root file plus every file transitively reachable from it.
package includegraph

import "ca65ls/internal/source"

// Graph holds bidirectional adjacency so both "what does this file include"
// and "what includes this file" are O(out-degree) lookups.
type Graph struct {
	includes map[source.FileID]map[source.FileID]struct{} // file -> files it includes
	includedBy map[source.FileID]map[source.FileID]struct{} // file -> files that include it
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		includes:   make(map[source.FileID]map[source.FileID]struct{}),
		includedBy: make(map[source.FileID]map[source.FileID]struct{}),
	}
}

// UpdateIncludes atomically replaces file's outbound edges with targets,
// matching the whole-file rescan-and-replace policy used elsewhere.
func (g *Graph) UpdateIncludes(file source.FileID, targets []source.FileID) {
	g.RemoveOutboundEdges(file)
	set := make(map[source.FileID]struct{}, len(targets))
	for _, t := range targets {
		if t == file {
			continue // a file including itself is not a meaningful edge
		}
		set[t] = struct{}{}
		if g.includedBy[t] == nil {
			g.includedBy[t] = make(map[source.FileID]struct{})
		}
		g.includedBy[t][file] = struct{}{}
	}
	g.includes[file] = set
}

// RemoveOutboundEdges clears file's outbound edges without removing file
// itself from the graph, used before a rescan replaces them.
func (g *Graph) RemoveOutboundEdges(file source.FileID) {
	for t := range g.includes[file] {
		delete(g.includedBy[t], file)
	}
	delete(g.includes, file)
}

// RemoveFile drops file entirely: its outbound edges and every inbound
// edge pointing at it.
func (g *Graph) RemoveFile(file source.FileID) {
	g.RemoveOutboundEdges(file)
	for from := range g.includedBy[file] {
		delete(g.includes[from], file)
	}
	delete(g.includedBy, file)
}

// Includes returns the files file directly includes.
func (g *Graph) Includes(file source.FileID) []source.FileID {
	return keys(g.includes[file])
}

// IncludedBy returns the files that directly include file.
func (g *Graph) IncludedBy(file source.FileID) []source.FileID {
	return keys(g.includedBy[file])
}

// Roots returns every file with no inbound edge: a file nothing else includes.
func (g *Graph) Roots(allFiles []source.FileID) []source.FileID {
	var out []source.FileID
	for _, f := range allFiles {
		if len(g.includedBy[f]) == 0 {
			out = append(out, f)
		}
	}
	return out
}

// Descendants returns every file transitively reachable from file via
// outbound edges, not including file itself. Cycles are tolerated: each
// file is visited at most once.
func (g *Graph) Descendants(file source.FileID) []source.FileID {
	return g.walk(file, g.includes)
}

// Ancestors returns every file that transitively includes file, not
// including file itself.
func (g *Graph) Ancestors(file source.FileID) []source.FileID {
	return g.walk(file, g.includedBy)
}

func (g *Graph) walk(start source.FileID, adj map[source.FileID]map[source.FileID]struct{}) []source.FileID {
	visited := map[source.FileID]struct{}{start: {}}
	stack := []source.FileID{start}
	var out []source.FileID
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adj[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			out = append(out, next)
			stack = append(stack, next)
		}
	}
	return out
}

// TranslationUnit returns root plus every file it transitively includes,
// root first, in no particular further order. A file with no inbound edges
// and nonempty outbound edges defines a translation unit; a file that is
// itself included elsewhere is typically not scanned as its own root, but
// TranslationUnit works for any starting file.
func (g *Graph) TranslationUnit(root source.FileID) []source.FileID {
	return append([]source.FileID{root}, g.Descendants(root)...)
}

func keys(m map[source.FileID]struct{}) []source.FileID {
	out := make([]source.FileID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
