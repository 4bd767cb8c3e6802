// Package output manages the on-disk artefacts of one extraction run.
// Markdown, TTS text, and audio all share one collision-free base name
// inside a single output directory, so the files belonging to a run are
// trivially associable.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patrickdeanbrown/wikibee/pkg/format"
	"github.com/patrickdeanbrown/wikibee/pkg/safepath"
)

// ErrAllocation is returned when the collision-probe space for a base
// name is exhausted.
var ErrAllocation = errors.New("unable to allocate unique filename")

// maxProbes bounds the "_N" collision suffix search.
const maxProbes = 999

// Paths holds the artefact paths of one run. All three are absolute,
// rooted under the manager's base directory, and never mutated after
// creation.
type Paths struct {
	MarkdownPath string
	TTSTextPath  string
	AudioPath    string
}

// Manager computes artefact paths and performs guarded writes.
type Manager struct {
	baseDir     string
	audioFormat string
}

// NewManager creates the base directory if needed and returns a manager
// producing audio paths with the given format extension.
func NewManager(baseDir, audioFormat string) (*Manager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory %q: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %q: %w", abs, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &Manager{baseDir: abs, audioFormat: audioFormat}, nil
}

// BaseDir returns the absolute output directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// PreparePaths derives the artefact paths for a page title. When
// filename is non-empty it overrides the title as the name source. The
// markdown name is probed for collisions (`_1` … `_999`); the TTS and
// audio paths reuse whatever base the probe settles on.
func (m *Manager) PreparePaths(pageTitle, filename string) (Paths, error) {
	source := filename
	if source == "" {
		source = pageTitle
	}
	safeBase := format.SanitizeFilename(source)

	mdPath, err := m.uniqueMarkdownPath(safeBase)
	if err != nil {
		return Paths{}, err
	}

	stem := strings.TrimSuffix(mdPath, ".md")
	return Paths{
		MarkdownPath: mdPath,
		TTSTextPath:  stem + ".txt",
		AudioPath:    stem + "." + m.audioFormat,
	}, nil
}

// WriteMarkdown persists the article markdown through the path guard.
func (m *Manager) WriteMarkdown(paths Paths, content string) error {
	return m.writeText(paths.MarkdownPath, content)
}

// WriteTTSCopy derives a speech-friendly text file from the markdown
// and persists it next to it.
func (m *Manager) WriteTTSCopy(paths Paths, markdown, headingPrefix string, normalize bool) error {
	source := markdown
	if normalize {
		source = format.NormalizeForTTS(source)
	}
	return m.writeText(paths.TTSTextPath, format.MakeTTSFriendly(source, headingPrefix))
}

func (m *Manager) writeText(path, content string) error {
	resolved, err := safepath.Resolve(path, m.baseDir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", resolved, err)
	}
	return nil
}

func (m *Manager) uniqueMarkdownPath(safeBase string) (string, error) {
	candidate := filepath.Join(m.baseDir, safeBase+".md")
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	for i := 1; i <= maxProbes; i++ {
		alternative := filepath.Join(m.baseDir, fmt.Sprintf("%s_%d.md", safeBase, i))
		if _, err := os.Stat(alternative); os.IsNotExist(err) {
			return alternative, nil
		}
	}
	return "", fmt.Errorf("%w for base %q", ErrAllocation, safeBase)
}
