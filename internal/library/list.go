// SPDX-License-Identifier: EPL-2.0

// Package library finds samples on disk and collects their metadata. It
// never plays anything.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultLimit = 1000

// Entry is one sample found under a library root.
type Entry struct {
	Path string
	Name string
}

// ListOptions tune List. The zero value lists up to DefaultLimit .wav files
// and follows symbolic links.
type ListOptions struct {
	Limit      int
	NoSymlinks bool
	Extensions []string // without the dot; defaults to wav
}

func (o ListOptions) match(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	exts := o.Extensions
	if len(exts) == 0 {
		exts = []string{"wav"}
	}
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// List walks root depth first and returns matching files, in directory
// order, stopping at the limit. Unreadable entries are skipped.
func List(root string, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("library root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("library root %s: not a directory", root)
	}

	var out []Entry
	err = walk(root, opts, func(path string) bool {
		out = append(out, Entry{Path: path, Name: filepath.Base(path)})
		return len(out) < opts.Limit
	})
	return out, err
}

// Count returns how many files List would find without a limit.
func Count(root string, opts ListOptions) (int, error) {
	n := 0
	err := walk(root, opts, func(string) bool {
		n++
		return true
	})
	return n, err
}

// walk calls visit for every matching regular file until visit returns
// false. Symlinked directories are entered once per real path.
func walk(root string, opts ListOptions, visit func(path string) bool) error {
	seen := make(map[string]bool)

	var dir func(path string) bool
	dir = func(path string) bool {
		if real, err := filepath.EvalSymlinks(path); err == nil {
			if seen[real] {
				return true
			}
			seen[real] = true
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return true
		}

		for _, e := range entries {
			full := filepath.Join(path, e.Name())
			mode := e.Type()

			if mode&os.ModeSymlink != 0 {
				if opts.NoSymlinks {
					continue
				}
				fi, err := os.Stat(full)
				if err != nil {
					continue
				}
				mode = fi.Mode().Type()
			}

			switch {
			case mode.IsDir():
				if !dir(full) {
					return false
				}
			case mode.IsRegular() && opts.match(e.Name()):
				if !visit(full) {
					return false
				}
			}
		}
		return true
	}

	dir(root)
	return nil
}
