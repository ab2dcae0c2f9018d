package audio

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	ioutils "github.com/Sorrow446/Yandex-Music-Downloader/internal/io"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

// maxFileNameLength is the conservative per-component limit most
// filesystems enforce; rendered names beyond it fall back to the padded
// track number.
const maxFileNameLength = 250

// embedCoverMaxSize bounds covers embedded into tags when the run keeps
// original-resolution artwork, which can be arbitrarily large.
const embedCoverMaxSize = 1000

// Options configures artifact assembly.
type Options struct {
	// OutputRoot is the directory album folders are created under.
	OutputRoot string

	// Template is the file naming template, e.g. "{track_num_pad}. {title}".
	Template string

	// WriteCovers embeds cover art into tags.
	// KeepCovers additionally writes folder.jpg next to the tracks.
	// OriginalCovers fetches the original upload instead of the fixed
	// 1000x1000 rendition.
	WriteCovers    bool
	KeepCovers     bool
	OriginalCovers bool

	// WriteLyrics writes a timed-lyrics .lrc sidecar when available.
	WriteLyrics bool
}

// Assembler turns a negotiated stream into the final on-disk artifacts:
// the tagged audio file, the optional folder cover and the optional
// lyrics sidecar.
//
// Audio bytes are staged under an ".incomplete" suffix and renamed into
// place only after the stream is fully written, so a crashed run never
// leaves a partial file at the final path.
//
// Example:
//
//	asm := NewAssembler(audio.Options{OutputRoot: out, Template: tpl, WriteCovers: true})
//	dir, path := asm.TrackPath(track, choice)
//	if err := asm.SaveAudio(dir, path, stream); err != nil { ... }
//	if err := asm.FinishTrack(path, track, choice, cover); err != nil { ... }
type Assembler struct {
	opts   Options
	tagger *Tagger
	images *ioutils.ImageService

	mu            sync.Mutex
	coversWritten map[string]struct{}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{
		opts:          opts,
		tagger:        NewTagger(),
		images:        ioutils.NewImageService(),
		coversWritten: make(map[string]struct{}),
	}
}

// TrackPath computes the album directory and the final audio path for a
// track at the negotiated encoding.
func (a *Assembler) TrackPath(track *model.TrackDescriptor, choice model.EncodingChoice) (dir, path string) {
	dir = filepath.Join(a.opts.OutputRoot, track.FolderName)

	name := model.NewNamingContext(track).Render(a.opts.Template)
	ext := choice.Extension()
	if len(name)+len(ext) > maxFileNameLength {
		name = model.PadTrackNumber(track.TrackNumber, track.TotalTracks)
	}

	return dir, filepath.Join(dir, name+ext)
}

// SaveAudio streams audio bytes into place atomically. The directory is
// created on demand; on any failure the staging file is removed and the
// final path stays untouched.
func (a *Assembler) SaveAudio(dir, path string, r io.Reader) error {
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}

	tmp := path + ioutils.IncompleteSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// FinishTrack tags the placed audio file. The raw cover may be nil; when
// original-resolution covers are kept, the embedded copy is downscaled
// so tags stay a sane size.
func (a *Assembler) FinishTrack(path string, track *model.TrackDescriptor, choice model.EncodingChoice, cover []byte) error {
	var embedded []byte
	if a.opts.WriteCovers && cover != nil {
		embedded = cover
		if a.opts.OriginalCovers {
			resized, err := a.images.ResizeImage(cover, embedCoverMaxSize, embedCoverMaxSize)
			if err == nil {
				embedded = resized
			}
		}
	}
	return a.tagger.Tag(path, track, choice, embedded)
}

// WriteFolderCover writes folder.jpg into the album directory once per
// album, at the cover's fetched resolution. Safe for concurrent callers.
func (a *Assembler) WriteFolderCover(dir, albumID string, cover []byte) error {
	if !a.opts.KeepCovers || len(cover) == 0 {
		return nil
	}

	a.mu.Lock()
	if _, done := a.coversWritten[dir]; done {
		a.mu.Unlock()
		return nil
	}
	a.coversWritten[dir] = struct{}{}
	a.mu.Unlock()

	jpg, err := a.images.ConvertToJPEG(cover)
	if err != nil {
		jpg = cover
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}
	return ioutils.WriteFile(filepath.Join(dir, "folder.jpg"), jpg)
}

// WriteLyricsFile writes the timed-lyrics sidecar next to the audio
// file, swapping the extension for .lrc.
func (a *Assembler) WriteLyricsFile(audioPath string, lyrics []byte) error {
	ext := filepath.Ext(audioPath)
	path := audioPath[:len(audioPath)-len(ext)] + ".lrc"
	return ioutils.WriteFileAtomic(path, lyrics)
}
