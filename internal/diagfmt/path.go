package diagfmt

import (
	"path/filepath"
	"strings"

	"codeshift/internal/source"
)

func displayPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	p := f.Path
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
	case PathModeRelative:
		if rel, ok := relative(fs, p); ok {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeAuto:
		if !filepath.IsAbs(p) {
			return p
		}
		if rel, ok := relative(fs, p); ok {
			return rel
		}
		return filepath.Base(p)
	}
	return p
}

// relative returns p relative to the file set base when p lies under it.
func relative(fs *source.FileSet, p string) (string, bool) {
	if fs == nil {
		return "", false
	}
	rel, err := filepath.Rel(fs.BaseDir(), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
