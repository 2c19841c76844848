package workspace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// ClearExcept removes every top-level entry of dir whose name is not in keep.
// A missing dir is created empty.
func ClearExcept(dir string, keep ...string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return mkdir(dir)
	}
	if err != nil {
		return fsError(err, "failed to read directory", dir)
	}
	for _, e := range entries {
		if slices.Contains(keep, e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return fsError(err, "failed to remove entry", p)
		}
	}
	return nil
}

// CopyOptions filters what CopyTree copies. Paths are slash-separated and
// relative to the source root.
type CopyOptions struct {
	// SkipHidden drops entries whose name starts with ".".
	SkipHidden bool
	// Exclude lists top-level names to leave out.
	Exclude []string
	// Ignore holds doublestar patterns; a matching directory is pruned.
	Ignore []string
}

func (o CopyOptions) skip(rel string, name string) bool {
	if o.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if !strings.Contains(rel, "/") && slices.Contains(o.Exclude, rel) {
		return true
	}
	for _, pattern := range o.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// CopyTree copies src into dst, merging with and overwriting what dst holds.
// It returns the number of files copied.
func CopyTree(src, dst string, opts CopyOptions) (int, error) {
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return 0, errors.ConfigError("invalid ignore pattern").WithContext("pattern", pattern).Build()
		}
	}
	info, err := os.Stat(src)
	if err != nil {
		return 0, fsError(err, "copy source not found", src)
	}
	if !info.IsDir() {
		return 0, errors.FileSystemError("copy source is not a directory").WithContext("path", src).Build()
	}

	copied := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return mkdir(dst)
		}
		rel = filepath.ToSlash(rel)
		if opts.skip(rel, d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, filepath.FromSlash(rel))
		switch {
		case d.IsDir():
			return mkdir(target)
		case d.Type().IsRegular():
			if err := CopyFile(p, target); err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return copied, err
		}
		return copied, fsError(err, "failed to copy tree", src)
	}
	return copied, nil
}

// CopyFile copies a regular file, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from the build tree
	if err != nil {
		return fsError(err, "failed to open file", src)
	}
	defer func() { _ = in.Close() }()

	if err := mkdir(filepath.Dir(dst)); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) // #nosec G302 G304 -- published site content
	if err != nil {
		return fsError(err, "failed to create file", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fsError(err, "failed to copy file", dst)
	}
	if err := out.Close(); err != nil {
		return fsError(err, "failed to close file", dst)
	}
	return nil
}

// Reset removes dir and recreates it empty.
func Reset(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fsError(err, "failed to remove directory", dir)
	}
	return mkdir(dir)
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fsError(err, "failed to create directory", dir)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, msg).WithContext("path", path).Build()
}
