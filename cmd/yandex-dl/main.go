package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/audio"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/config"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/download"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex"
)

func main() {
	var (
		urlsFlag     = flag.String("url", "", "URL(s) to download (comma-separated); .txt files expand to one URL per line")
		configFlag   = flag.String("config", "", "Path to config file")
		tokenFlag    = flag.String("token", "", "OAuth token (overrides config)")
		formatFlag   = flag.Int("format", 0, "Quality: 1 = AAC 64, 2 = AAC 192, 3 = AAC 256 / MP3 320, 4 = FLAC")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		templateFlag = flag.String("template", "", "Track naming template (overrides config)")
		lyricsFlag   = flag.Bool("lyrics", false, "Write synced lyrics when available")
		keepFlag     = flag.Bool("keep-covers", false, "Write folder.jpg into album folders")
		originalFlag = flag.Bool("original-covers", false, "Fetch original-resolution covers")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if *urlsFlag == "" && flag.NArg() == 0 {
		fmt.Println("Yandex Music Downloader")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  yandex-dl -url <URL> [options]")
		fmt.Println("  yandex-dl <URL> [<URL> ...] [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: yandex-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *tokenFlag != "" {
		settings.Token = *tokenFlag
	}
	if *formatFlag != 0 {
		settings.Format = *formatFlag
	}
	if *outputFlag != "" {
		settings.OutPath = *outputFlag
	}
	if *templateFlag != "" {
		settings.TrackTemplate = *templateFlag
	}
	if *lyricsFlag {
		settings.WriteLyrics = true
	}
	if *keepFlag {
		settings.KeepCovers = true
	}
	if *originalFlag {
		settings.OriginalCovers = true
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	inputs, err := gatherInputs(*urlsFlag, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading URLs: %v\n", err)
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	report := &model.RunReport{}

	var refs []model.Reference
	for _, input := range inputs {
		ref, err := yandex.Classify(input)
		if err != nil {
			color.Yellow("! Skipping unrecognized URL: %s", input)
			report.AddFailedReference(model.Reference{Input: input}, "unrecognized URL")
			continue
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		fmt.Fprintln(os.Stderr, "No usable URLs.")
		os.Exit(1)
	}

	color.Cyan("Signing in...")
	client, err := yandex.NewClient(ctx, settings.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sign-in failed: %v\n", err)
		os.Exit(1)
	}
	color.Green("Signed in as %s.", client.Login())

	resolver := yandex.NewResolver(client, settings.MaxConcurrentResolves)
	resolutions, err := resolver.ResolveAll(ctx, refs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolution failed: %v\n", err)
		os.Exit(1)
	}

	var tracks []*model.TrackDescriptor
	for _, res := range resolutions {
		if res.Err != nil {
			color.Yellow("! %s: %v", res.Reference.Describe(), res.Err)
			report.AddFailedReference(res.Reference, res.Err.Error())
			continue
		}
		if res.Warning != "" {
			color.Yellow("! %s: %s", res.Reference.Describe(), res.Warning)
		}
		color.Cyan("Resolved %s (%d tracks)", res.Reference.Describe(), len(res.Tracks))
		tracks = append(tracks, res.Tracks...)
	}
	if len(tracks) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to download.")
		os.Exit(1)
	}

	assembler := audio.NewAssembler(audio.Options{
		OutputRoot:     settings.OutPath,
		Template:       settings.TrackTemplate,
		WriteCovers:    settings.WriteCovers,
		KeepCovers:     settings.KeepCovers,
		OriginalCovers: settings.OriginalCovers,
		WriteLyrics:    settings.WriteLyrics,
	})

	orchestrator := download.NewOrchestrator(settings, client, yandex.NewNegotiator(client), assembler,
		func(event download.ProgressEvent) {
			printEvent(event, *verboseFlag)
		})

	var bar *progressbar.ProgressBar
	orchestrator.TrackStarted = func(track *model.TrackDescriptor, choice model.EncodingChoice, totalBytes int64) {
		bar = progressbar.DefaultBytes(totalBytes, track.Title)
	}
	orchestrator.TrackBytes = func(n int) {
		if bar != nil {
			bar.Add(n)
		}
	}

	runReport, err := orchestrator.Run(ctx, tracks)
	mergeResults(report, runReport)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			printSummary(report)
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Run aborted: %v\n", err)
		printSummary(report)
		os.Exit(1)
	}

	printSummary(report)
}

// gatherInputs merges the -url flag and positional arguments, expands
// .txt files into one URL per line and de-duplicates while keeping
// first-seen order.
func gatherInputs(urlsFlag string, args []string) ([]string, error) {
	var raw []string
	for _, part := range strings.Split(urlsFlag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			raw = append(raw, part)
		}
	}
	raw = append(raw, args...)

	var inputs []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSuffix(strings.TrimSpace(s), "/")
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		inputs = append(inputs, s)
	}

	for _, item := range raw {
		if strings.HasSuffix(item, ".txt") {
			data, err := os.ReadFile(item)
			if err != nil {
				return nil, err
			}
			for _, line := range strings.Split(string(data), "\n") {
				add(line)
			}
			continue
		}
		add(item)
	}

	return inputs, nil
}

func printEvent(event download.ProgressEvent, verbose bool) {
	switch event.Level {
	case download.LevelError:
		color.Red("✗ %s", event.Message)
	case download.LevelWarning:
		color.Yellow("! %s", event.Message)
	case download.LevelSuccess:
		color.Green("✓ %s", event.Message)
	case download.LevelInfo:
		fmt.Println(event.Message)
	default:
		if verbose {
			fmt.Println(event.Message)
		}
	}
}

func mergeResults(into, from *model.RunReport) {
	if from == nil {
		return
	}
	into.Results = append(into.Results, from.Results...)
	into.FailedReferences = append(into.FailedReferences, from.FailedReferences...)
}

func printSummary(report *model.RunReport) {
	success, failed, skipped := report.Counts()

	fmt.Println()
	color.Green("Succeeded: %d", success)
	if skipped > 0 {
		color.Cyan("Skipped:   %d", skipped)
	}
	if failed > 0 || len(report.FailedReferences) > 0 {
		color.Red("Failed:    %d", failed+len(report.FailedReferences))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Item", "Reason"})
		for _, ref := range report.FailedReferences {
			table.Append([]string{ref.Reference.Input, ref.Reason})
		}
		for _, res := range report.Failures() {
			item := fmt.Sprintf("%s - %s", res.Track.ArtistLine(), res.Track.Title)
			table.Append([]string{item, res.Reason})
		}
		table.Render()
	}
}
