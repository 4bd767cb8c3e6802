// Package tts synthesizes narration audio through an OpenAI-compatible
// speech endpoint and assembles chaptered audiobook containers.
package tts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/patrickdeanbrown/wikibee/pkg/logger"
	"github.com/patrickdeanbrown/wikibee/pkg/safepath"
)

// SpeechParams carries the per-call synthesis knobs.
type SpeechParams struct {
	Model   string
	Voice   string
	Format  string
	Timeout time.Duration
}

// Synthesizer converts text to one audio file under baseDir and returns
// its absolute path. destPath is resolved against baseDir through the
// path guard, so a traversal attempt fails before any network work.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, destPath, baseDir string, params SpeechParams) (string, error)
}

// Client talks to an OpenAI-compatible /v1/audio/speech endpoint and
// streams the response straight to disk. It is caller-owned: construct
// one explicitly and pass it where needed, there is no package-level
// singleton.
type Client struct {
	api openai.Client
}

// NewClient builds a speech client for the given server. apiKey may be
// a placeholder for local servers that do not check it.
func NewClient(baseURL, apiKey string) *Client {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/")),
		// The format fallback below is the only sanctioned retry.
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Client{api: openai.NewClient(opts...)}
}

// Synthesize issues the streaming speech call. If the endpoint rejects
// the response_format parameter itself, the call is retried exactly
// once without it, relying on the server's default encoding. Any other
// failure is not retried. On failure a partially written file may
// remain; discarding it is the caller's responsibility.
func (c *Client) Synthesize(ctx context.Context, text, destPath, baseDir string, params SpeechParams) (string, error) {
	dest, err := safepath.Resolve(destPath, baseDir)
	if err != nil {
		return "", err
	}

	err = c.attempt(ctx, text, dest, params, params.Format != "")
	if err != nil && params.Format != "" && rejectsFormatParam(err) {
		logger.WarnCF("tts", "Server rejected response format, retrying with default encoding", map[string]any{
			"format": params.Format,
		})
		err = c.attempt(ctx, text, dest, params, false)
	}
	if err != nil {
		return "", synthesisFailed(err)
	}
	return dest, nil
}

func (c *Client) attempt(ctx context.Context, text, dest string, params SpeechParams, includeFormat bool) error {
	body := openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(params.Model),
		Input: text,
	}
	if params.Voice != "" {
		body.Voice = openai.AudioSpeechNewParamsVoice(params.Voice)
	}
	if includeFormat {
		body.ResponseFormat = openai.AudioSpeechNewParamsResponseFormat(params.Format)
	}

	reqOpts := []option.RequestOption{}
	if params.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(params.Timeout))
	}

	resp, err := c.api.Audio.Speech.New(ctx, body, reqOpts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	// Stream directly to disk; the payload is never buffered whole.
	if _, err := io.Copy(file, resp.Body); err != nil {
		return err
	}
	return nil
}

// rejectsFormatParam reports whether err is an interface-level
// rejection of the response_format parameter, as opposed to a network,
// auth, or server failure. The endpoint exposes no structured
// capability probe, so this combines the status class with the error
// message referencing the parameter.
func rejectsFormatParam(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest && apiErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	if msg == "" {
		msg = strings.ToLower(apiErr.Error())
	}
	return strings.Contains(msg, "format")
}
