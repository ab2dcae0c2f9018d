package download

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/config"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex/dto"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// StreamSource is the slice of the API client the orchestrator pulls
// bytes through.
type StreamSource interface {
	FetchStream(ctx context.Context, fullURL string, withRange bool) (io.ReadCloser, int64, error)
	FetchBytes(ctx context.Context, fullURL string) ([]byte, error)
	LyricsMeta(ctx context.Context, trackID string) (*dto.LyricsResult, error)
}

// EncodingNegotiator resolves the stream for one track at one tier.
type EncodingNegotiator interface {
	Negotiate(ctx context.Context, track *model.TrackDescriptor, tier model.QualityTier) (*model.EncodingChoice, error)
}

// Assembler places and finishes on-disk artifacts for one track.
type Assembler interface {
	TrackPath(track *model.TrackDescriptor, choice model.EncodingChoice) (dir, path string)
	SaveAudio(dir, path string, r io.Reader) error
	FinishTrack(path string, track *model.TrackDescriptor, choice model.EncodingChoice, cover []byte) error
	WriteFolderCover(dir, albumID string, cover []byte) error
	WriteLyricsFile(audioPath string, lyrics []byte) error
}

// Orchestrator runs the per-track download loop: negotiate, fetch,
// place, tag. Tracks are processed strictly in resolution order, one at
// a time, with a pacing delay between consecutive downloads. One track
// failing never stops the run; only a rejected credential does.
type Orchestrator struct {
	settings  *config.Settings
	tier      model.QualityTier
	source    StreamSource
	negotiate EncodingNegotiator
	assembler Assembler

	// TrackStarted, when set, fires once per track right before its
	// bytes flow, with the negotiated encoding and the expected size
	// (-1 when unknown). TrackBytes then receives incremental counts.
	// Both are called from the download goroutine.
	TrackStarted func(track *model.TrackDescriptor, choice model.EncodingChoice, totalBytes int64)
	TrackBytes   func(n int)

	receivedBytes   int64
	totalTracks     int32
	downloadedFiles int32

	// covers caches one fetched cover per album for the whole run.
	covers map[string][]byte

	onProgress func(ProgressEvent)
}

// NewOrchestrator creates an Orchestrator around an authenticated
// client and the run's settings.
func NewOrchestrator(settings *config.Settings, source StreamSource, negotiator EncodingNegotiator, assembler Assembler, onProgress func(ProgressEvent)) *Orchestrator {
	return &Orchestrator{
		settings:   settings,
		tier:       settings.Tier(),
		source:     source,
		negotiate:  negotiator,
		assembler:  assembler,
		covers:     make(map[string][]byte),
		onProgress: onProgress,
	}
}

// GetProgress returns current download progress for polling frontends.
func (o *Orchestrator) GetProgress() (receivedBytes int64, filesDone, filesTotal int32) {
	return atomic.LoadInt64(&o.receivedBytes),
		atomic.LoadInt32(&o.downloadedFiles), atomic.LoadInt32(&o.totalTracks)
}

// Run downloads the tracks in order and returns the run report. The
// returned error is non-nil only when the run was aborted outright: a
// rejected credential or a cancelled context.
func (o *Orchestrator) Run(ctx context.Context, tracks []*model.TrackDescriptor) (*model.RunReport, error) {
	report := &model.RunReport{}
	atomic.StoreInt32(&o.totalTracks, int32(len(tracks)))

	for i, track := range tracks {
		if i > 0 && o.settings.Sleep {
			if err := o.pace(ctx); err != nil {
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := o.downloadTrack(ctx, track)
		report.Add(result)
		atomic.AddInt32(&o.downloadedFiles, 1)

		switch result.Outcome {
		case model.OutcomeSuccess:
			o.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(result.Path)), Level: LevelSuccess})
		case model.OutcomeSkipped:
			o.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(result.Path)), Level: LevelVerbose})
		case model.OutcomeFailed:
			o.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s - %s: %s", track.ArtistLine(), track.Title, result.Reason), Level: LevelError})
			if yandex.IsFatal(result.Err) {
				return report, result.Err
			}
		}
	}

	return report, nil
}

// downloadTrack runs the negotiate/fetch/place/tag sequence for one
// track, retrying retryable faults with exponential backoff.
func (o *Orchestrator) downloadTrack(ctx context.Context, track *model.TrackDescriptor) model.DownloadResult {
	result := model.DownloadResult{Track: track}

	if !track.Available {
		result.Outcome = model.OutcomeFailed
		result.Reason = "track is not available on the service"
		return result
	}

	var lastErr error
	for tries := 0; tries < o.settings.MaxRetries; tries++ {
		if tries > 0 {
			o.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries, o.settings.MaxRetries-1, track.Title), Level: LevelWarning})
		}

		done, res := o.attempt(ctx, track)
		if done {
			return res
		}
		lastErr = res.Err

		if !o.retryable(lastErr) {
			break
		}
		o.waitForRetry(ctx, tries, lastErr)
		if ctx.Err() != nil {
			break
		}
	}

	result.Outcome = model.OutcomeFailed
	result.Err = lastErr
	result.Reason = reasonFor(lastErr)
	return result
}

// attempt performs one full try. The bool reports whether the result is
// final; a false return carries a retry-candidate error in the result.
func (o *Orchestrator) attempt(ctx context.Context, track *model.TrackDescriptor) (bool, model.DownloadResult) {
	result := model.DownloadResult{Track: track}

	// Stream URLs are short-lived, so each attempt negotiates afresh.
	choice, err := o.negotiate.Negotiate(ctx, track, o.tier)
	if err != nil {
		if yandex.IsUnavailableEncoding(err) || yandex.IsFatal(err) {
			result.Outcome = model.OutcomeFailed
			result.Err = err
			result.Reason = reasonFor(err)
			return true, result
		}
		result.Err = err
		return false, result
	}

	dir, path := o.assembler.TrackPath(track, *choice)
	result.Path = path

	if _, err := os.Stat(path); err == nil {
		result.Outcome = model.OutcomeSkipped
		return true, result
	}

	cover := o.albumCover(ctx, track)

	o.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s - %s (%s)", track.ArtistLine(), track.Title, choice.Describe()), Level: LevelInfo})

	stream, size, err := o.source.FetchStream(ctx, choice.StreamURL, true)
	if err != nil {
		result.Err = err
		return false, result
	}
	if o.TrackStarted != nil {
		o.TrackStarted(track, *choice, size)
	}

	err = o.assembler.SaveAudio(dir, path, o.countingReader(stream))
	stream.Close()
	if err != nil {
		result.Err = err
		return false, result
	}

	if err := o.assembler.FinishTrack(path, track, *choice, cover); err != nil {
		o.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", track.Title, err), Level: LevelWarning})
	}
	if err := o.assembler.WriteFolderCover(dir, track.AlbumID, cover); err != nil {
		o.progress(ProgressEvent{Message: fmt.Sprintf("Error saving cover for %s: %v", track.AlbumTitle, err), Level: LevelWarning})
	}
	o.writeLyrics(ctx, track, path)

	result.Outcome = model.OutcomeSuccess
	return true, result
}

// albumCover fetches the track's album art once per album and caches it
// for the rest of the run. A missing cover degrades to untagged art,
// never to a failed track.
func (o *Orchestrator) albumCover(ctx context.Context, track *model.TrackDescriptor) []byte {
	if !o.settings.WriteCovers && !o.settings.KeepCovers {
		return nil
	}
	if track.CoverURITemplate == "" {
		return nil
	}
	if cover, ok := o.covers[track.AlbumID]; ok {
		return cover
	}

	url := yandex.CoverURL(track.CoverURITemplate, o.settings.OriginalCovers)
	cover, err := o.source.FetchBytes(ctx, url)
	if err != nil {
		o.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching cover for %s: %v", track.AlbumTitle, err), Level: LevelWarning})
		cover = nil
	}
	o.covers[track.AlbumID] = cover
	return cover
}

// writeLyrics fetches and places the timed-lyrics sidecar when the run
// asks for lyrics and the track has them.
func (o *Orchestrator) writeLyrics(ctx context.Context, track *model.TrackDescriptor, audioPath string) {
	if !o.settings.WriteLyrics || !track.HasSyncLyrics {
		return
	}

	meta, err := o.source.LyricsMeta(ctx, track.TrackID)
	if err != nil {
		o.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching lyrics for %s: %v", track.Title, err), Level: LevelWarning})
		return
	}
	if meta.DownloadURL == "" {
		return
	}

	lyrics, err := o.source.FetchBytes(ctx, meta.DownloadURL)
	if err == nil {
		err = o.assembler.WriteLyricsFile(audioPath, lyrics)
	}
	if err != nil {
		o.progress(ProgressEvent{Message: fmt.Sprintf("Error writing lyrics for %s: %v", track.Title, err), Level: LevelWarning})
	}
}

// retryable reports whether another attempt could change the outcome.
func (o *Orchestrator) retryable(err error) bool {
	kind, ok := yandex.KindOf(err)
	if !ok {
		// Transport-level failures arrive untyped.
		return true
	}
	return kind == yandex.KindTransient || kind == yandex.KindRateLimited
}

// waitForRetry sleeps between attempts. Rate limiting gets the flat,
// longer cooldown; everything else backs off exponentially.
func (o *Orchestrator) waitForRetry(ctx context.Context, tries int, err error) {
	cooldown := o.settings.RetryCooldown * math.Pow(o.settings.RetryExponent, float64(tries))
	if kind, ok := yandex.KindOf(err); ok && kind == yandex.KindRateLimited {
		cooldown = o.settings.RateLimitCooldown
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

// pace applies the configured delay between consecutive track downloads.
func (o *Orchestrator) pace(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(o.settings.SleepInterval * float64(time.Second))):
		return nil
	}
}

func (o *Orchestrator) countingReader(r io.Reader) io.Reader {
	return &progressReader{r: r, o: o}
}

type progressReader struct {
	r io.Reader
	o *Orchestrator
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		atomic.AddInt64(&p.o.receivedBytes, int64(n))
		if p.o.TrackBytes != nil {
			p.o.TrackBytes(n)
		}
	}
	return n, err
}

// reasonFor condenses an error into the short reason string carried by
// the run report.
func reasonFor(err error) string {
	switch {
	case err == nil:
		return ""
	case yandex.IsUnavailableEncoding(err):
		return "requested quality not available"
	case yandex.IsFatal(err):
		return "credentials rejected"
	default:
		return err.Error()
	}
}

func (o *Orchestrator) progress(event ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(event)
	}
}
