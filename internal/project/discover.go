package project

import (
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// skipDirs names directories WalkDir never descends into, regardless of
// .gitignore content.
var skipDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	"bin":          {},
	"obj":          {},
	"build":        {},
	"dist":         {},
}

// Workspace is the set of source files discovered under a set of roots,
// each assigned to the deepest root that contains it.
type Workspace struct {
	Roots []string
	Files []string
	// rootOf maps a discovered file to the deepest configured root
	// containing it.
	rootOf map[string]string
}

// RootFor returns the deepest configured root containing file, if any.
func (w *Workspace) RootFor(file string) (string, bool) {
	r, ok := w.rootOf[file]
	return r, ok
}

// Discover walks roots (each typically an LSP workspace folder), collecting
// every file whose extension is in extensions (defaulting to .s/.asm/.inc
// plus cfg.Extensions), skipping VCS and build-output directories by name
// and anything excluded by the .gitignore or .ca65ignore at the top of each
// root; ignore files in subdirectories are not read.
// It never reads file contents to decide inclusion.
func Discover(roots []string, cfg Config) (*Workspace, error) {
	allowed := make(map[string]struct{})
	for _, ext := range DefaultConfig().Extensions {
		allowed[ext] = struct{}{}
	}
	for _, ext := range cfg.Extensions {
		allowed[ext] = struct{}{}
	}
	for _, ext := range cfg.AutoInclude {
		allowed[ext] = struct{}{}
	}

	// Sort roots longest-first so a nested root shadows its parent when
	// assigning each file's owning root.
	sorted := append([]string(nil), roots...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	ws := &Workspace{Roots: roots, rootOf: make(map[string]string)}
	for _, root := range roots {
		matchers := loadIgnoreChain(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if d.IsDir() {
				if path == root {
					return nil
				}
				if _, skip := skipDirs[d.Name()]; skip || strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				if matchers.ignored(rel, true) {
					return fs.SkipDir
				}
				return nil
			}
			if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			if matchers.ignored(rel, false) {
				return nil
			}
			ws.Files = append(ws.Files, path)
			if owner, seen := ws.rootOf[path]; !seen || len(root) > len(owner) {
				ws.rootOf[path] = root
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// ignoreChain is the set of .gitignore/.ca65ignore matchers loaded from a
// root directory; a path is ignored as soon as any one of them matches.
// Ignore files below the root are not loaded.
type ignoreChain struct {
	matchers []*gitignore.GitIgnore
}

func (c ignoreChain) ignored(relPath string, isDir bool) bool {
	for _, m := range c.matchers {
		if m == nil {
			continue
		}
		if m.MatchesPath(relPath) {
			return true
		}
	}
	return false
}

func loadIgnoreChain(root string) ignoreChain {
	var chain ignoreChain
	for _, name := range []string{".gitignore", ".ca65ignore"} {
		path := filepath.Join(root, name)
		if m, err := gitignore.CompileIgnoreFile(path); err == nil {
			chain.matchers = append(chain.matchers, m)
		}
	}
	return chain
}
