// Package safepath confines pipeline writes to a single base directory.
//
// Every file the pipeline produces (markdown, TTS text, temporary audio
// segments, the final container) is resolved through Resolve before any
// write happens. Titles and filenames originate from remote article
// content, so nothing derived from them may escape the output directory.
package safepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTraversal is returned when a requested path resolves outside the
// base directory. It is always fatal and never retried.
var ErrTraversal = errors.New("path escapes base directory")

// Resolve resolves requested against baseDir and returns an absolute
// path that is baseDir or a descendant of it. Relative paths are taken
// as relative to baseDir; absolute paths are used as-is. On success the
// parent directory of the result is created if missing. On failure no
// filesystem mutation occurs.
func Resolve(requested, baseDir string) (string, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory %q: %w", baseDir, err)
	}
	// Symlinked base directories compare against their real location.
	if real, err := filepath.EvalSymlinks(base); err == nil {
		base = real
	}

	candidate := requested
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	candidate, err = filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", requested, err)
	}

	// Lexical containment is not enough: a symlink inside the base could
	// still point the write somewhere else. Compare physical locations.
	physical, err := resolvePhysical(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", requested, err)
	}

	if !Within(physical, base) {
		return "", fmt.Errorf("%w: %q is outside %q", ErrTraversal, candidate, base)
	}

	if err := os.MkdirAll(filepath.Dir(physical), 0o755); err != nil {
		return "", fmt.Errorf("creating parent directory for %q: %w", physical, err)
	}
	return physical, nil
}

// resolvePhysical resolves symlinks in the deepest existing ancestor of
// path and rejoins the not-yet-created remainder onto it. The final
// components usually do not exist before the first write, so the path
// cannot be handed to EvalSymlinks whole. A dangling symlink anywhere
// on the path is an error: creating through one would write to its
// unverifiable target.
func resolvePhysical(path string) (string, error) {
	existing := path
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	real, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{real}, rest...)...), nil
}

// Within reports whether path equals base or has base as a proper
// ancestor. Both arguments must already be absolute and cleaned.
func Within(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
