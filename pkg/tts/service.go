package tts

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickdeanbrown/wikibee/pkg/format"
	"github.com/patrickdeanbrown/wikibee/pkg/logger"
	"github.com/patrickdeanbrown/wikibee/pkg/output"
)

// Metadata is applied to the produced audio: ID3v2 tags for flat mp3
// output, FFMETADATA global tags for containers.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Date   string
}

// Request is the caller-supplied, read-only input to one synthesis run.
type Request struct {
	Markdown      string
	HeadingPrefix string
	Normalize     bool
	Voice         string
	Format        string
	Model         string
	Timeout       time.Duration
	Metadata      Metadata
}

// Service is the single entry point for audio production. It hides the
// branch between a single flat synthesis call and chaptered container
// assembly.
type Service struct {
	synth     Synthesizer
	manager   *output.Manager
	assembler *Assembler
}

// NewService wires a service around a speech client and an output
// manager. The assembler defaults to ffprobe-based duration probing.
func NewService(synth Synthesizer, manager *output.Manager) *Service {
	return &Service{
		synth:     synth,
		manager:   manager,
		assembler: NewAssembler(synth, nil),
	}
}

// BuildText renders the markdown into the flat narration text used for
// single-file synthesis and the .txt companion.
func (s *Service) BuildText(markdown, headingPrefix string, normalize bool) string {
	source := markdown
	if normalize {
		source = format.NormalizeForTTS(source)
	}
	return format.MakeTTSFriendly(source, headingPrefix)
}

// Synthesize produces the audio artefact for req at the location
// reserved in paths and returns the final absolute path. A lower-cased
// m4b format selects chaptered assembly; anything else is one direct
// synthesis call.
func (s *Service) Synthesize(ctx context.Context, req Request, paths output.Paths) (string, error) {
	relAudio, err := filepath.Rel(s.manager.BaseDir(), paths.AudioPath)
	if err != nil {
		relAudio = paths.AudioPath
	}

	if strings.ToLower(req.Format) == ContainerFormat {
		return s.assembler.Assemble(ctx, req, relAudio, s.manager.BaseDir())
	}

	text := s.BuildText(req.Markdown, req.HeadingPrefix, req.Normalize)
	saved, err := s.synth.Synthesize(ctx, text, relAudio, s.manager.BaseDir(), SpeechParams{
		Model:   req.Model,
		Voice:   req.Voice,
		Format:  req.Format,
		Timeout: req.Timeout,
	})
	if err != nil {
		return "", err
	}

	if err := applyID3(saved, req.Metadata); err != nil {
		// Tagging is best effort; the narration itself is intact.
		logger.WarnCF("tts", "Failed to apply audio metadata", map[string]any{
			"path":  saved,
			"error": err.Error(),
		})
	}
	return saved, nil
}
