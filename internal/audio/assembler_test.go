package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/bogem/id3v2"
)

func testTrack() *model.TrackDescriptor {
	return &model.TrackDescriptor{
		TrackID:      "t1",
		AlbumID:      "10",
		Title:        "Some Song",
		Artists:      []string{"First Artist", "Second Artist"},
		AlbumArtists: []string{"First Artist"},
		TrackNumber:  3,
		TotalTracks:  12,
		AlbumTitle:   "Some Album",
		FolderName:   "First Artist - Some Album",
		Genre:        "rock",
		Label:        "Some Label",
		Year:         2020,
	}
}

func TestAssembler_TrackPath(t *testing.T) {
	asm := NewAssembler(Options{
		OutputRoot: "/music",
		Template:   "{track_num_pad}. {title}",
	})
	choice := model.EncodingChoice{Codec: model.CodecFLAC}

	dir, path := asm.TrackPath(testTrack(), choice)
	if dir != filepath.Join("/music", "First Artist - Some Album") {
		t.Errorf("dir = %q", dir)
	}
	if got, want := filepath.Base(path), "03. Some Song.flac"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestAssembler_TrackPath_LongNameFallsBack(t *testing.T) {
	asm := NewAssembler(Options{
		OutputRoot: "/music",
		Template:   "{track_num_pad}. {title}",
	})
	track := testTrack()
	track.Title = strings.Repeat("x", 300)

	_, path := asm.TrackPath(track, model.EncodingChoice{Codec: model.CodecMP3})
	if got, want := filepath.Base(path), "03.mp3"; got != want {
		t.Errorf("file = %q, want padded-number fallback %q", got, want)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream cut") }

func TestAssembler_SaveAudio_Atomic(t *testing.T) {
	root := t.TempDir()
	asm := NewAssembler(Options{OutputRoot: root, Template: "{title}"})
	dir := filepath.Join(root, "album")
	path := filepath.Join(dir, "song.mp3")

	if err := asm.SaveAudio(dir, path, failingReader{}); err == nil {
		t.Fatal("expected stream error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed download left a file at the final path")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging leftovers: %v", entries)
	}

	if err := asm.SaveAudio(dir, path, strings.NewReader("audio-bytes")); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio-bytes" {
		t.Errorf("final file = %q, %v", data, err)
	}
}

func TestAssembler_WriteFolderCover_OncePerAlbum(t *testing.T) {
	root := t.TempDir()
	asm := NewAssembler(Options{OutputRoot: root, KeepCovers: true})
	dir := filepath.Join(root, "album")

	if err := asm.WriteFolderCover(dir, "10", []byte("first")); err != nil {
		t.Fatalf("WriteFolderCover: %v", err)
	}
	// Second call for the same directory must not rewrite the file.
	if err := asm.WriteFolderCover(dir, "10", []byte("second")); err != nil {
		t.Fatalf("WriteFolderCover: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "folder.jpg"))
	if err != nil {
		t.Fatalf("folder.jpg missing: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("folder.jpg = %q, want the first write kept", data)
	}
}

func TestAssembler_WriteFolderCover_Disabled(t *testing.T) {
	root := t.TempDir()
	asm := NewAssembler(Options{OutputRoot: root, KeepCovers: false})
	dir := filepath.Join(root, "album")

	if err := asm.WriteFolderCover(dir, "10", []byte("cover")); err != nil {
		t.Fatalf("WriteFolderCover: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "folder.jpg")); !os.IsNotExist(err) {
		t.Error("folder.jpg written despite keep_covers being off")
	}
}

func TestAssembler_WriteLyricsFile(t *testing.T) {
	root := t.TempDir()
	asm := NewAssembler(Options{OutputRoot: root})
	audioPath := filepath.Join(root, "03. Some Song.flac")

	if err := asm.WriteLyricsFile(audioPath, []byte("[00:01.00] line")); err != nil {
		t.Fatalf("WriteLyricsFile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "03. Some Song.lrc"))
	if err != nil {
		t.Fatalf("lyrics sidecar missing: %v", err)
	}
	if string(data) != "[00:01.00] line" {
		t.Errorf("lyrics = %q", data)
	}
}

func TestTagger_MP3RoundTrip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "song.mp3")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger()
	track := testTrack()
	choice := model.EncodingChoice{Codec: model.CodecMP3, Bitrate: 320}
	if err := tagger.Tag(path, track, choice, nil); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Some Song" {
		t.Errorf("title = %q", tag.Title())
	}
	if tag.Artist() != "First Artist, Second Artist" {
		t.Errorf("artist = %q", tag.Artist())
	}
	if tag.Album() != "Some Album" {
		t.Errorf("album = %q", tag.Album())
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "3/12" {
		t.Errorf("TRCK = %q, want 3/12", got)
	}
	if got := tag.GetTextFrame("TPE2").Text; got != "First Artist" {
		t.Errorf("TPE2 = %q", got)
	}
}

func TestTagger_UnknownCodec(t *testing.T) {
	tagger := NewTagger()
	err := tagger.Tag("nowhere", testTrack(), model.EncodingChoice{Codec: "opus"}, nil)
	if err == nil {
		t.Error("expected error for unknown codec")
	}
}
