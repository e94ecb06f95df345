package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	ignore "github.com/sabhiram/go-gitignore"

	"codeshift/internal/lang"
	"codeshift/internal/source"
)

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"__pycache__":   {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"target":        {},
	"build":         {},
	"dist":          {},
	".pytest_cache": {},
}

// discoverPaths expands args into source paths. Files named explicitly are
// always kept; directories contribute files with a registered extension
// that are neither ignored nor vendored.
func discoverPaths(args, extraIgnore []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !st.IsDir() {
			add(arg)
			continue
		}
		found, err := walkDir(arg, extraIgnore)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

func walkDir(root string, extraIgnore []string) ([]string, error) {
	gi := loadIgnore(root, extraIgnore)
	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if enry.IsVendor(rel+"/") || (gi != nil && gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if enry.IsVendor(rel) || len(lang.ByExtension(name)) == 0 {
			return nil
		}
		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(results)
	return results, nil
}

func loadIgnore(root string, extra []string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if len(extra) == 0 {
			return nil
		}
		return ignore.CompileIgnoreLines(extra...)
	}
	gi, err := ignore.CompileIgnoreFileAndLines(path, extra...)
	if err != nil {
		return nil
	}
	return gi
}

// loadFiles reads paths into a new file set rooted at the working
// directory. Paths below it are stored relative to it.
func loadFiles(paths []string, hint string) (*source.FileSet, []*source.File, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	fs := source.NewFileSetWithBase(wd)
	files := make([]*source.File, 0, len(paths))
	for _, p := range paths {
		id, err := fs.Load(underDir(wd, p), hint)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, fs.Get(id))
	}
	return fs, files, nil
}

func underDir(dir, p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
