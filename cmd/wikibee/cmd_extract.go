package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/patrickdeanbrown/wikibee/pkg/config"
	"github.com/patrickdeanbrown/wikibee/pkg/format"
	"github.com/patrickdeanbrown/wikibee/pkg/history"
	"github.com/patrickdeanbrown/wikibee/pkg/logger"
	"github.com/patrickdeanbrown/wikibee/pkg/output"
	"github.com/patrickdeanbrown/wikibee/pkg/tts"
	"github.com/patrickdeanbrown/wikibee/pkg/wiki"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <article URL or search term>",
		Short: "Extract a Wikipedia article to markdown, TTS text, and audio",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	cmd.Flags().StringP("output", "o", "", "Directory to save output")
	cmd.Flags().StringP("filename", "f", "", "Base filename (otherwise derived from the title)")
	cmd.Flags().BoolP("no-save", "n", false, "Print markdown to stdout instead of saving")
	cmd.Flags().IntP("timeout", "t", 0, "HTTP timeout in seconds")
	cmd.Flags().BoolP("lead-only", "l", false, "Fetch only the lead (intro) section")
	cmd.Flags().Bool("tts", false, "Also write a TTS-friendly .txt next to the .md")
	cmd.Flags().String("heading-prefix", "", "Spoken prefix for headings, e.g. 'Section:'")
	cmd.Flags().Bool("audio", false, "Also synthesize audio via the TTS server")
	cmd.Flags().String("tts-server", "", "Base URL of the OpenAI-compatible TTS server")
	cmd.Flags().String("tts-voice", "", "Voice identifier for the TTS engine")
	cmd.Flags().String("tts-format", "", "Audio output format (m4b builds a chaptered audiobook)")
	cmd.Flags().Bool("tts-normalize", false, "Normalize text for better narration")
	cmd.Flags().BoolP("yolo", "y", false, "Auto-select the first search result")
	cmd.Flags().Int("search-limit", 0, "Maximum number of search results")
	return cmd
}

// mergeExtractFlags layers explicitly set CLI flags over the resolved
// config, completing the defaults < file < env < flags precedence.
func mergeExtractFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("output") {
		cfg.General.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("timeout") {
		cfg.General.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if flags.Changed("lead-only") {
		cfg.General.LeadOnly, _ = flags.GetBool("lead-only")
	}
	if flags.Changed("verbose") {
		cfg.General.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("tts") {
		cfg.TTS.TextFile, _ = flags.GetBool("tts")
	}
	if flags.Changed("heading-prefix") {
		cfg.TTS.HeadingPrefix, _ = flags.GetString("heading-prefix")
	}
	if flags.Changed("audio") {
		cfg.TTS.Audio, _ = flags.GetBool("audio")
	}
	if flags.Changed("tts-server") {
		cfg.TTS.ServerURL, _ = flags.GetString("tts-server")
	}
	if flags.Changed("tts-voice") {
		cfg.TTS.Voice, _ = flags.GetString("tts-voice")
	}
	if flags.Changed("tts-format") {
		cfg.TTS.Format, _ = flags.GetString("tts-format")
	}
	if flags.Changed("tts-normalize") {
		cfg.TTS.Normalize, _ = flags.GetBool("tts-normalize")
	}
	if flags.Changed("yolo") {
		cfg.Search.AutoSelect, _ = flags.GetBool("yolo")
	}
	if flags.Changed("search-limit") {
		cfg.Search.Limit, _ = flags.GetInt("search-limit")
	}
}

func loadConfigForCmd(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigForCmd(cmd)
	if err != nil {
		return err
	}
	mergeExtractFlags(cmd, cfg)

	if cfg.General.Verbose {
		logger.SetLevel(logger.DEBUG)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := time.Duration(cfg.General.TimeoutSeconds) * time.Second
	client := wiki.NewClient("")

	articleURL, err := resolveArticleURL(ctx, client, args[0], cfg, timeout)
	if err != nil {
		return err
	}

	title, err := wiki.TitleFromURL(articleURL)
	if err != nil {
		return err
	}
	logger.InfoCF("extract", "Fetching article", map[string]any{"title": title})

	page, err := client.FetchExtract(ctx, title, cfg.General.LeadOnly, timeout)
	if err != nil {
		return err
	}

	markdown := buildMarkdown(page)

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		fmt.Fprintln(cmd.OutOrStdout(), markdown)
		return nil
	}

	manager, err := output.NewManager(cfg.General.OutputDir, strings.ToLower(cfg.TTS.Format))
	if err != nil {
		return err
	}

	filename, _ := cmd.Flags().GetString("filename")
	paths, err := manager.PreparePaths(page.Title, filename)
	if err != nil {
		return err
	}

	if err := manager.WriteMarkdown(paths, markdown); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Output saved to:", paths.MarkdownPath)

	if cfg.TTS.TextFile {
		if err := manager.WriteTTSCopy(paths, markdown, cfg.TTS.HeadingPrefix, cfg.TTS.Normalize); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "TTS-friendly copy saved to:", paths.TTSTextPath)
	}

	var audioPath string
	if cfg.TTS.Audio {
		audioPath, err = synthesizeAudio(ctx, cfg, manager, paths, page, markdown)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Audio saved to:", audioPath)
	}

	recordRun(ctx, cfg, page, articleURL, paths, audioPath)
	return nil
}

// resolveArticleURL turns the positional argument into an article URL,
// running an interactive search when it is not already one.
func resolveArticleURL(ctx context.Context, client *wiki.Client, arg string, cfg *config.Config, timeout time.Duration) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, nil
	}

	results, err := client.Search(ctx, arg, cfg.Search.Limit, timeout)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no results found for %q", arg)
	}

	if len(results) == 1 || cfg.Search.AutoSelect {
		logger.InfoCF("extract", "Selected search result", map[string]any{"title": results[0].Title})
		return results[0].URL, nil
	}
	return pickSearchResult(results, arg)
}

// buildMarkdown renders the fetched extract as a markdown document:
// the page title as the top heading, wiki section headers converted to
// markdown headings.
func buildMarkdown(page *wiki.Page) string {
	body := format.ConvertWikitextHeaders(strings.TrimSpace(page.Extract))
	return fmt.Sprintf("# %s\n\n%s\n", page.Title, body)
}

func synthesizeAudio(ctx context.Context, cfg *config.Config, manager *output.Manager, paths output.Paths, page *wiki.Page, markdown string) (string, error) {
	client := tts.NewClient(cfg.TTS.ServerURL, cfg.TTS.APIKey)
	service := tts.NewService(client, manager)

	req := tts.Request{
		Markdown:      markdown,
		HeadingPrefix: cfg.TTS.HeadingPrefix,
		Normalize:     cfg.TTS.Normalize,
		Voice:         cfg.TTS.Voice,
		Format:        cfg.TTS.Format,
		Model:         cfg.TTS.Model,
		Timeout:       time.Duration(cfg.TTS.TimeoutSeconds) * time.Second,
		Metadata: tts.Metadata{
			Title:  page.Title,
			Artist: "wikibee",
			Album:  "Wikipedia Articles",
			Genre:  "Speech",
			Date:   time.Now().Format("2006"),
		},
	}
	return service.Synthesize(ctx, req, paths)
}

// recordRun stores the completed run in the history index. Failures
// only cost the history entry, never the run itself.
func recordRun(ctx context.Context, cfg *config.Config, page *wiki.Page, articleURL string, paths output.Paths, audioPath string) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.WarnCF("history", "Could not open history database", map[string]any{"error": err.Error()})
		return
	}
	defer store.Close()

	run := history.Run{
		Title:        page.Title,
		URL:          articleURL,
		MarkdownPath: paths.MarkdownPath,
		AudioPath:    audioPath,
		Format:       cfg.TTS.Format,
	}
	if audioPath != "" {
		if seconds, err := (tts.FFProbe{}).Probe(ctx, audioPath); err == nil {
			run.DurationSeconds = seconds
		}
	}

	if _, err := store.Record(run); err != nil {
		logger.WarnCF("history", "Could not record run", map[string]any{"error": err.Error()})
	}
}
