package corpus

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// WalkOptions configures a Walker.
type WalkOptions struct {
	// Include restricts the walk to matching patterns (empty = all files).
	Include []string

	// Exclude skips matching files and directory subtrees.
	Exclude []string

	// IncludeHidden also walks dot-prefixed directories.
	IncludeHidden bool
}

// Walker enumerates regular files under a root directory in deterministic
// (lexical) order, so repeated runs over an unchanged corpus assign the
// same document IDs to the same paths. Hidden directories are skipped
// unless IncludeHidden is set; the root itself may be hidden.
//
// Patterns match the path relative to the root. A pattern ending in "/**"
// excludes the whole subtree; any other pattern is matched with
// filepath.Match against both the relative path and the base name.
type Walker struct {
	root    string
	opts    WalkOptions
	walked  bool
	entries []PathInfo
	pos     int
}

// NewWalker creates a Walker over root.
func NewWalker(root string, opts WalkOptions) *Walker {
	return &Walker{root: root, opts: opts}
}

// Next implements Iterator. The tree is walked on the first call; a listing
// failure anywhere in the tree surfaces as the iterator error.
func (w *Walker) Next() (PathInfo, bool, error) {
	if !w.walked {
		if err := w.walk(); err != nil {
			return PathInfo{}, false, err
		}
		w.walked = true
	}

	if w.pos >= len(w.entries) {
		return PathInfo{}, false, nil
	}
	info := w.entries[w.pos]
	w.pos++
	return info, true, nil
}

func (w *Walker) walk() error {
	absRoot, err := filepath.Abs(w.root)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !w.opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if w.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if w.excluded(rel) {
			return nil
		}
		if !w.included(rel) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return statErr
		}

		w.entries = append(w.entries, PathInfo{Path: path, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return err
	}

	// WalkDir already visits lexically, but sort defensively so ID
	// assignment stays deterministic across platforms.
	sort.Slice(w.entries, func(i, j int) bool {
		return w.entries[i].Path < w.entries[j].Path
	})
	return nil
}

func (w *Walker) excludedDir(rel string) bool {
	for _, pattern := range w.opts.Exclude {
		if subtree, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == subtree || strings.HasPrefix(rel, subtree+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range w.opts.Exclude {
		if subtree, ok := strings.CutSuffix(pattern, "/**"); ok {
			if strings.HasPrefix(rel, subtree+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (w *Walker) included(rel string) bool {
	if len(w.opts.Include) == 0 {
		return true
	}
	base := filepath.Base(rel)
	for _, pattern := range w.opts.Include {
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
