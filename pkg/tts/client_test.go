package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickdeanbrown/wikibee/pkg/safepath"
)

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// newSpeechServer fakes an OpenAI-compatible /audio/speech endpoint.
// When rejectFormat is set, any request carrying response_format gets a
// parameter-level 400.
func newSpeechServer(t *testing.T, rejectFormat bool, calls *[]speechRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*calls = append(*calls, req)

		if rejectFormat && req.ResponseFormat != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"message": "unknown parameter: response_format",
					"type":    "invalid_request_error",
				},
			})
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake audio bytes"))
	}))
}

func testParams() SpeechParams {
	return SpeechParams{Model: "kokoro", Voice: "af_sky", Format: "mp3", Timeout: 5 * time.Second}
}

func TestClientSynthesizeStreamsToFile(t *testing.T) {
	var calls []speechRequest
	server := newSpeechServer(t, false, &calls)
	defer server.Close()

	base := t.TempDir()
	client := NewClient(server.URL, "test-key")

	got, err := client.Synthesize(context.Background(), "Hello world.", "article.mp3", base, testParams())
	require.NoError(t, err)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "fake audio bytes", string(data))

	require.Len(t, calls, 1)
	assert.Equal(t, "kokoro", calls[0].Model)
	assert.Equal(t, "Hello world.", calls[0].Input)
	assert.Equal(t, "af_sky", calls[0].Voice)
	assert.Equal(t, "mp3", calls[0].ResponseFormat)
}

func TestClientRetriesWithoutFormatOnRejection(t *testing.T) {
	var calls []speechRequest
	server := newSpeechServer(t, true, &calls)
	defer server.Close()

	base := t.TempDir()
	client := NewClient(server.URL, "test-key")

	got, err := client.Synthesize(context.Background(), "text", "out.mp3", base, testParams())
	require.NoError(t, err)
	assert.FileExists(t, got)

	// Exactly two attempts: with the format, then without.
	require.Len(t, calls, 2)
	assert.Equal(t, "mp3", calls[0].ResponseFormat)
	assert.Empty(t, calls[1].ResponseFormat)
}

func TestClientDoesNotRetryOtherFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Synthesize(context.Background(), "text", "out.mp3", t.TempDir(), testParams())

	require.Error(t, err)
	var synthErr *SynthesisError
	assert.ErrorAs(t, err, &synthErr)
	assert.Equal(t, 1, calls)
}

func TestClientRejectsTraversalBeforeAnyRequest(t *testing.T) {
	var calls []speechRequest
	server := newSpeechServer(t, false, &calls)
	defer server.Close()

	base := t.TempDir()
	client := NewClient(server.URL, "test-key")

	_, err := client.Synthesize(context.Background(), "text", "../escape.mp3", base, testParams())
	require.ErrorIs(t, err, safepath.ErrTraversal)
	assert.Empty(t, calls)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(base), "escape.mp3"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestClientImplementsSynthesizer(t *testing.T) {
	var _ Synthesizer = (*Client)(nil)
}
