package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/config"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex/dto"
)

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Token = "test"
	s.Sleep = false
	s.MaxRetries = 3
	s.RetryCooldown = 0
	s.RetryExponent = 1
	s.RateLimitCooldown = 0
	s.WriteCovers = false
	s.KeepCovers = false
	s.WriteLyrics = false
	return s
}

func availableTrack(id, albumID, title string) *model.TrackDescriptor {
	return &model.TrackDescriptor{
		TrackID:          id,
		AlbumID:          albumID,
		Title:            title,
		Artists:          []string{"Some Artist"},
		AlbumArtists:     []string{"Some Artist"},
		TrackNumber:      1,
		TotalTracks:      1,
		AlbumTitle:       "Some Album",
		FolderName:       "Some Artist - Some Album",
		CoverURITemplate: "covers.example/" + albumID + "/%%",
		Available:        true,
	}
}

type fakeSource struct {
	streamCalls int32
	coverCalls  int32
	streamErrs  []error

	lyricsURL string
}

func (f *fakeSource) FetchStream(ctx context.Context, url string, withRange bool) (io.ReadCloser, int64, error) {
	n := atomic.AddInt32(&f.streamCalls, 1)
	if int(n) <= len(f.streamErrs) {
		if err := f.streamErrs[n-1]; err != nil {
			return nil, 0, err
		}
	}
	return io.NopCloser(strings.NewReader("audio-bytes")), 11, nil
}

func (f *fakeSource) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "https://covers.example/") {
		atomic.AddInt32(&f.coverCalls, 1)
		return []byte("cover"), nil
	}
	return []byte("[00:01.00] line"), nil
}

func (f *fakeSource) LyricsMeta(ctx context.Context, trackID string) (*dto.LyricsResult, error) {
	return &dto.LyricsResult{DownloadURL: f.lyricsURL}, nil
}

type fakeNegotiator struct {
	perTrack map[string]error
}

func (f *fakeNegotiator) Negotiate(ctx context.Context, track *model.TrackDescriptor, tier model.QualityTier) (*model.EncodingChoice, error) {
	if err := f.perTrack[track.TrackID]; err != nil {
		return nil, err
	}
	return &model.EncodingChoice{Codec: model.CodecFLAC, Bitrate: 1411, StreamURL: "https://cdn.example/" + track.TrackID}, nil
}

// fakeAssembler places real files so existence checks behave, but skips
// tagging entirely.
type fakeAssembler struct {
	root   string
	lyrics []string
	covers []string
}

func (f *fakeAssembler) TrackPath(track *model.TrackDescriptor, choice model.EncodingChoice) (string, string) {
	dir := filepath.Join(f.root, track.FolderName)
	return dir, filepath.Join(dir, track.TrackID+choice.Extension())
}

func (f *fakeAssembler) SaveAudio(dir, path string, r io.Reader) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (f *fakeAssembler) FinishTrack(path string, track *model.TrackDescriptor, choice model.EncodingChoice, cover []byte) error {
	return nil
}

func (f *fakeAssembler) WriteFolderCover(dir, albumID string, cover []byte) error {
	if cover != nil {
		f.covers = append(f.covers, albumID)
	}
	return nil
}

func (f *fakeAssembler) WriteLyricsFile(audioPath string, lyrics []byte) error {
	f.lyrics = append(f.lyrics, audioPath)
	return nil
}

func newTestOrchestrator(t *testing.T, settings *config.Settings, source *fakeSource, negotiator *fakeNegotiator) (*Orchestrator, *fakeAssembler) {
	t.Helper()
	asm := &fakeAssembler{root: t.TempDir()}
	orch := NewOrchestrator(settings, source, negotiator, asm, nil)
	return orch, asm
}

func TestOrchestrator_PartialFailureIsolation(t *testing.T) {
	source := &fakeSource{}
	negotiator := &fakeNegotiator{perTrack: map[string]error{
		"t2": yandex.ErrUnavailableEncoding,
	}}
	orch, asm := newTestOrchestrator(t, testSettings(), source, negotiator)

	tracks := []*model.TrackDescriptor{
		availableTrack("t1", "10", "First"),
		availableTrack("t2", "10", "Second"),
		availableTrack("t3", "10", "Third"),
	}
	report, err := orch.Run(context.Background(), tracks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	success, failed, skipped := report.Counts()
	if success != 2 || failed != 1 || skipped != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0", success, failed, skipped)
	}
	// Results keep resolution order.
	for i, want := range []string{"t1", "t2", "t3"} {
		if report.Results[i].Track.TrackID != want {
			t.Errorf("result %d is %s, want %s", i, report.Results[i].Track.TrackID, want)
		}
	}
	if report.Results[1].Reason != "requested quality not available" {
		t.Errorf("failure reason = %q", report.Results[1].Reason)
	}

	for _, id := range []string{"t1", "t3"} {
		path := filepath.Join(asm.root, "Some Artist - Some Album", id+".flac")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing downloaded file for %s: %v", id, err)
		}
	}
}

func TestOrchestrator_SkipsExistingFile(t *testing.T) {
	source := &fakeSource{}
	orch, asm := newTestOrchestrator(t, testSettings(), source, &fakeNegotiator{})

	track := availableTrack("t1", "10", "First")
	dir := filepath.Join(asm.root, track.FolderName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "t1.flac"), []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	report, err := orch.Run(context.Background(), []*model.TrackDescriptor{track})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, _, skipped := report.Counts(); skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if source.streamCalls != 0 {
		t.Errorf("stream fetched %d times for an existing file", source.streamCalls)
	}
}

func TestOrchestrator_RetriesTransientFaults(t *testing.T) {
	transient := &yandex.APIError{Kind: yandex.KindTransient, Op: "fetch stream", Err: errors.New("cut")}
	source := &fakeSource{streamErrs: []error{transient, transient}}
	orch, _ := newTestOrchestrator(t, testSettings(), source, &fakeNegotiator{})

	report, err := orch.Run(context.Background(), []*model.TrackDescriptor{availableTrack("t1", "10", "First")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if success, _, _ := report.Counts(); success != 1 {
		t.Fatalf("track should succeed on the third attempt: %+v", report.Results)
	}
	if source.streamCalls != 3 {
		t.Errorf("streamCalls = %d, want 3", source.streamCalls)
	}
}

func TestOrchestrator_RetriesExhausted(t *testing.T) {
	transient := &yandex.APIError{Kind: yandex.KindTransient, Op: "fetch stream", Err: errors.New("cut")}
	source := &fakeSource{streamErrs: []error{transient, transient, transient}}
	orch, _ := newTestOrchestrator(t, testSettings(), source, &fakeNegotiator{})

	report, err := orch.Run(context.Background(), []*model.TrackDescriptor{availableTrack("t1", "10", "First")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, failed, _ := report.Counts(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if source.streamCalls != 3 {
		t.Errorf("streamCalls = %d, want exactly max retries", source.streamCalls)
	}
}

func TestOrchestrator_UnauthorizedAbortsRun(t *testing.T) {
	negotiator := &fakeNegotiator{perTrack: map[string]error{
		"t1": &yandex.APIError{Kind: yandex.KindUnauthorized, Op: "get-file-info", Status: 401},
	}}
	source := &fakeSource{}
	orch, _ := newTestOrchestrator(t, testSettings(), source, negotiator)

	tracks := []*model.TrackDescriptor{
		availableTrack("t1", "10", "First"),
		availableTrack("t2", "10", "Second"),
	}
	report, err := orch.Run(context.Background(), tracks)
	if !yandex.IsFatal(err) {
		t.Fatalf("Run error = %v, want fatal credential error", err)
	}
	if len(report.Results) != 1 {
		t.Errorf("later tracks should not be attempted after abort, got %d results", len(report.Results))
	}
}

func TestOrchestrator_UnavailableTrackFailsWithoutNegotiation(t *testing.T) {
	source := &fakeSource{}
	orch, _ := newTestOrchestrator(t, testSettings(), source, &fakeNegotiator{})

	track := availableTrack("t1", "10", "First")
	track.Available = false

	report, err := orch.Run(context.Background(), []*model.TrackDescriptor{track})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, failed, _ := report.Counts(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if source.streamCalls != 0 {
		t.Error("unavailable track should not reach the stream")
	}
}

func TestOrchestrator_CoverFetchedOncePerAlbum(t *testing.T) {
	settings := testSettings()
	settings.KeepCovers = true
	source := &fakeSource{}
	orch, asm := newTestOrchestrator(t, settings, source, &fakeNegotiator{})

	tracks := []*model.TrackDescriptor{
		availableTrack("t1", "10", "First"),
		availableTrack("t2", "10", "Second"),
		availableTrack("t3", "20", "Other Album"),
	}
	if _, err := orch.Run(context.Background(), tracks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if source.coverCalls != 2 {
		t.Errorf("coverCalls = %d, want one per album", source.coverCalls)
	}
	if len(asm.covers) != 3 {
		t.Errorf("folder cover offered %d times, want once per track", len(asm.covers))
	}
}

func TestOrchestrator_WritesLyricsSidecar(t *testing.T) {
	settings := testSettings()
	settings.WriteLyrics = true
	source := &fakeSource{lyricsURL: "https://cdn.example/t1.lrc"}
	orch, asm := newTestOrchestrator(t, settings, source, &fakeNegotiator{})

	withLyrics := availableTrack("t1", "10", "First")
	withLyrics.HasSyncLyrics = true
	without := availableTrack("t2", "10", "Second")

	if _, err := orch.Run(context.Background(), []*model.TrackDescriptor{withLyrics, without}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(asm.lyrics) != 1 || !strings.HasSuffix(asm.lyrics[0], "t1.flac") {
		t.Errorf("lyrics writes = %v, want exactly the track that has them", asm.lyrics)
	}
}

func TestOrchestrator_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch, _ := newTestOrchestrator(t, testSettings(), &fakeSource{}, &fakeNegotiator{})
	report, err := orch.Run(ctx, []*model.TrackDescriptor{availableTrack("t1", "10", "First")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("no tracks should be processed after cancellation")
	}
}
