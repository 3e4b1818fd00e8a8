// Package workspace is the orchestrator that ties a scanned file's table to
// the cross-file structures (includes graph, export map, resolver) needed
// to answer queries that cross file boundaries, and keeps them consistent
// as files are opened, edited, and removed.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"ca65ls/internal/diag"
	"ca65ls/internal/exportmap"
	"ca65ls/internal/includegraph"
	"ca65ls/internal/project"
	"ca65ls/internal/resolver"
	"ca65ls/internal/scanner"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
)

// Workspace owns every known file's table plus the shared indexes built on
// top of them. A single Workspace typically backs one LSP server instance.
type Workspace struct {
	mu sync.Mutex

	Files    *source.FileSet
	Interner *source.Interner
	Graph    *includegraph.Graph
	Exports  *exportmap.Map
	Resolver *resolver.Engine

	Config project.Config
	Root   string

	includes map[source.FileID][]scanner.Include
}

// New returns an empty workspace with default configuration.
func New() *Workspace {
	files := source.NewFileSet()
	interner := source.NewInterner()
	graph := includegraph.New()
	exports := exportmap.New()
	return &Workspace{
		Files:    files,
		Interner: interner,
		Graph:    graph,
		Exports:  exports,
		Resolver: resolver.New(graph, exports, interner),
		Config:   project.DefaultConfig(),
		includes: make(map[source.FileID][]scanner.Include),
	}
}

// SetRoot records the workspace root and loads ca65.toml from it, if present.
func (w *Workspace) SetRoot(root string) {
	w.mu.Lock()
	w.Root = root
	w.mu.Unlock()
	if manifestPath, ok, err := project.FindCa65Toml(root); err == nil && ok {
		if cfg, err := project.LoadConfig(manifestPath); err == nil {
			w.mu.Lock()
			w.Config = cfg
			w.mu.Unlock()
		}
	}
}

// File returns the FileID currently assigned to path, if the file has been
// scanned at least once.
func (w *Workspace) File(path string) (source.FileID, bool) {
	return w.Files.GetLatest(path)
}

// Table returns the scoped symbol table currently installed for file.
func (w *Workspace) Table(file source.FileID) (*symbols.Table, bool) {
	return w.Resolver.Table(file)
}

// Rescan (re)scans path with content, installing a fresh table and
// re-deriving its outbound include edges and export contribution. The
// file's FileID stays stable across repeated rescans of the same path.
func (w *Workspace) Rescan(path string, content []byte) source.FileID {
	id, existed := w.Files.GetLatest(path)
	if existed {
		w.Files.Update(id, content, 0)
	} else {
		id = w.Files.Add(path, content, 0)
	}

	file := w.Files.Get(id)
	res := scanner.Scan(id, w.Interner, string(file.Content))
	targets := w.resolveIncludeTargets(path, res.Includes)

	w.mu.Lock()
	w.Resolver.SetTable(id, res.Table)
	w.Exports.UpdateExports(id, res.Table.ExportList())
	w.Graph.UpdateIncludes(id, targets)
	w.includes[id] = res.Includes
	w.mu.Unlock()

	w.Resolver.InvalidateFile(id)
	w.Resolver.InvalidateExports()
	return id
}

// RemoveFile drops path entirely from the workspace's cross-file indexes.
// The FileSet entry itself is left in place (FileSet never frees slots) but
// is no longer reachable via any other file's graph or export entries.
func (w *Workspace) RemoveFile(path string) {
	id, ok := w.Files.GetLatest(path)
	if !ok {
		return
	}
	w.mu.Lock()
	w.Graph.RemoveFile(id)
	w.Exports.RemoveFile(id)
	delete(w.includes, id)
	w.mu.Unlock()
	w.Resolver.InvalidateFile(id)
	w.Resolver.InvalidateExports()
}

// ScanAll scans every path in paths by reading it from disk, resolving
// include edges only after every file's own table has been built so that
// forward includes (a file including one discovered later in the list)
// still resolve. Used for the initial workspace load.
//
// The read-and-scan step has no cross-file dependency, so it runs on a
// bounded worker pool; registering each file's table and resolving include
// targets both touch shared workspace state and stay single-goroutine.
// Per-file read failures are collected into the returned bag instead of
// being silently dropped.
func (w *Workspace) ScanAll(paths []string) *diag.Bag {
	type pending struct {
		id  source.FileID
		res scanner.Result
	}

	bag := diag.NewBag(len(paths))
	scanned := make([]*pending, len(paths))

	limit := runtime.GOMAXPROCS(0)
	if limit > len(paths) {
		limit = len(paths)
	}
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(limit)
	var bagMu sync.Mutex

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			data, err := os.ReadFile(path) //nolint:gosec // workspace-discovered path
			if err != nil {
				bagMu.Lock()
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
				bagMu.Unlock()
				return nil
			}

			w.mu.Lock()
			id, existed := w.Files.GetLatest(path)
			if existed {
				w.Files.Update(id, data, 0)
			} else {
				id = w.Files.Add(path, data, 0)
			}
			file := w.Files.Get(id)
			content := string(file.Content)
			w.mu.Unlock()

			res := scanner.Scan(id, w.Interner, content)
			scanned[i] = &pending{id: id, res: res}
			return nil
		})
	}
	_ = g.Wait() // per-file goroutines never return a non-nil error; failures go into bag

	w.mu.Lock()
	for _, p := range scanned {
		if p == nil {
			continue
		}
		w.Resolver.SetTable(p.id, p.res.Table)
		w.Exports.UpdateExports(p.id, p.res.Table.ExportList())
		w.includes[p.id] = p.res.Includes
	}
	w.mu.Unlock()

	for _, p := range scanned {
		if p == nil {
			continue
		}
		file := w.Files.Get(p.id)
		targets := w.resolveIncludeTargets(file.Path, p.res.Includes)
		w.mu.Lock()
		w.Graph.UpdateIncludes(p.id, targets)
		w.mu.Unlock()
	}
	w.Resolver.InvalidateExports()
	for _, p := range scanned {
		if p == nil {
			continue
		}
		w.Resolver.InvalidateFile(p.id)
	}

	return bag
}

// resolveIncludeTargets maps each include's literal path to a FileID,
// registering a not-yet-known target by reading it from disk. The newly
// registered file's own includes are not cascaded further here; they are
// picked up the next time that file is itself scanned (by ScanAll or by
// being opened), which keeps a single edit's cost bounded.
func (w *Workspace) resolveIncludeTargets(fromPath string, includes []scanner.Include) []source.FileID {
	dir := filepath.Dir(fromPath)
	var out []source.FileID
	for _, inc := range includes {
		resolved, ok := w.resolveIncludePath(dir, inc.Path, inc.Binary)
		if !ok {
			continue
		}
		id, known := w.Files.GetLatest(resolved)
		if !known {
			data, err := os.ReadFile(resolved) //nolint:gosec // resolved via configured include dirs
			if err != nil {
				continue
			}
			id = w.Files.Add(resolved, data, 0)
			res := scanner.Scan(id, w.Interner, string(data))
			w.mu.Lock()
			w.Resolver.SetTable(id, res.Table)
			w.Exports.UpdateExports(id, res.Table.ExportList())
			w.includes[id] = res.Includes
			w.mu.Unlock()
		}
		out = append(out, id)
	}
	return out
}

// resolveIncludePath implements the glossary include-path resolution rule:
// the containing file's own directory first, then the configured
// include-dirs (or bin-include-dirs for .incbin), which may be glob
// patterns relative to the workspace root; the first existing file wins.
func (w *Workspace) resolveIncludePath(fromDir, target string, binary bool) (string, bool) {
	if filepath.IsAbs(target) {
		if fileExists(target) {
			return target, true
		}
		return "", false
	}
	if candidate := filepath.Join(fromDir, target); fileExists(candidate) {
		return candidate, true
	}
	dirs := w.Config.IncludeDirs
	if binary {
		dirs = w.Config.BinIncludeDirs
	}
	for _, d := range dirs {
		base := d
		if !filepath.IsAbs(base) && w.Root != "" {
			base = filepath.Join(w.Root, base)
		}
		if matches, _ := filepath.Glob(filepath.Join(base, target)); len(matches) > 0 {
			return matches[0], true
		}
		if candidate := filepath.Join(base, target); fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
