package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/patrickdeanbrown/wikibee/pkg/format"
	"github.com/patrickdeanbrown/wikibee/pkg/logger"
	"github.com/patrickdeanbrown/wikibee/pkg/safepath"
)

const (
	// ContainerFormat is the chapter-capable output format.
	ContainerFormat = "m4b"

	// segmentFormat is the fixed intermediate encoding every segment is
	// synthesized in, regardless of the final container format. The
	// concat demuxer handles it everywhere.
	segmentFormat = "mp3"

	containerCodec   = "aac"
	containerBitrate = "64k"
)

// DurationProber reports the playable duration of an audio file in
// seconds, read from the file's own metadata.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// FFProbe measures durations with the ffprobe binary.
type FFProbe struct{}

func (FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration for %q: %w", path, err)
	}
	return seconds, nil
}

// Assembler produces one chaptered container file from per-chapter
// synthesized segments. One Assemble call owns its temporary working
// directory exclusively; chapters are processed strictly in order so
// the timing manifest is deterministic.
type Assembler struct {
	synth  Synthesizer
	prober DurationProber

	// runMux invokes the external muxer; swapped out in tests.
	runMux func(ctx context.Context, args []string) error

	// lookPath locates the muxer binary; swapped out in tests.
	lookPath func(name string) (string, error)
}

// NewAssembler wires an assembler around a speech client. Durations are
// measured with ffprobe unless a custom prober is supplied.
func NewAssembler(synth Synthesizer, prober DurationProber) *Assembler {
	if prober == nil {
		prober = FFProbe{}
	}
	return &Assembler{
		synth:    synth,
		prober:   prober,
		runMux:   runFFmpeg,
		lookPath: exec.LookPath,
	}
}

// Assemble synthesizes one segment per chapter of the markdown, then
// muxes them into a single container at destPath (resolved against
// baseDir) with chapter marks derived from measured durations. The
// destination is only written on full success.
func (a *Assembler) Assemble(ctx context.Context, req Request, destPath, baseDir string) (string, error) {
	// Fail fast before spending any synthesis calls.
	if _, err := a.lookPath("ffmpeg"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMuxerUnavailable, err)
	}

	dest, err := safepath.Resolve(destPath, baseDir)
	if err != nil {
		return "", err
	}

	chapters := a.chapterTexts(req)

	workDir, err := os.MkdirTemp("", "wikibee-segments-")
	if err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	titles := make([]string, 0, len(chapters))
	durations := make([]float64, 0, len(chapters))
	files := make([]string, 0, len(chapters))

	for i, chapter := range chapters {
		segName := fmt.Sprintf("segment_%03d.%s", i+1, segmentFormat)
		logger.InfoCF("tts", "Synthesizing chapter", map[string]any{
			"index": i + 1,
			"total": len(chapters),
			"title": chapter.Title,
		})

		segPath, err := a.synth.Synthesize(ctx, chapter.Body, segName, workDir, SpeechParams{
			Model:   req.Model,
			Voice:   req.Voice,
			Format:  segmentFormat,
			Timeout: req.Timeout,
		})
		if err != nil {
			return "", fmt.Errorf("chapter %q: %w", chapter.Title, err)
		}

		seconds, err := a.prober.Probe(ctx, segPath)
		if err != nil {
			return "", fmt.Errorf("measuring chapter %q: %w", chapter.Title, err)
		}

		titles = append(titles, chapter.Title)
		durations = append(durations, seconds)
		files = append(files, segPath)
	}

	listPath := filepath.Join(workDir, "segments.txt")
	metaPath := filepath.Join(workDir, "metadata.txt")
	muxOut := filepath.Join(workDir, "output."+ContainerFormat)

	if err := writeFileWith(listPath, func(w io.Writer) error {
		return writeConcatList(w, files)
	}); err != nil {
		return "", err
	}
	marks := buildChapterMarks(titles, durations)
	if err := writeFileWith(metaPath, func(w io.Writer) error {
		return writeFFMetadata(w, req.Metadata, marks)
	}); err != nil {
		return "", err
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", metaPath,
		"-map_metadata", "1",
		"-c:a", containerCodec,
		"-b:a", containerBitrate,
		muxOut,
	}
	muxCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		muxCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	if err := a.runMux(muxCtx, args); err != nil {
		return "", err
	}

	if err := moveFile(muxOut, dest); err != nil {
		return "", fmt.Errorf("placing container at %q: %w", dest, err)
	}

	logger.InfoCF("tts", "Audiobook assembled", map[string]any{
		"path":     dest,
		"chapters": len(marks),
	})
	return dest, nil
}

// chapterTexts segments the markdown into narration chapters, dropping
// any whose rendered text is empty. If nothing survives, the whole
// normalized text becomes a single generic chapter.
func (a *Assembler) chapterTexts(req Request) []format.Section {
	source := req.Markdown
	if req.Normalize {
		source = format.NormalizeForTTS(source)
	}

	var chapters []format.Section
	for _, section := range format.BuildTTSSections(source) {
		text := strings.TrimSpace(format.MakeTTSFriendly(section.Body, req.HeadingPrefix))
		if text == "" {
			continue
		}
		chapters = append(chapters, format.Section{Title: section.Title, Body: text})
	}

	if len(chapters) == 0 {
		fallback := strings.TrimSpace(format.MakeTTSFriendly(format.NormalizeForTTS(req.Markdown), req.HeadingPrefix))
		chapters = append(chapters, format.Section{Title: "Audiobook", Body: fallback})
	}
	return chapters
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &MuxError{cause: err, stderr: tail(stderr.String(), 500)}
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func writeFileWith(path string, fill func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer file.Close()
	return fill(file)
}

// moveFile renames src to dst, copying across filesystems when a plain
// rename is not possible.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src into dst via a staging file beside dst, so an
// interrupted copy never leaves a partial file at the final path.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
