package audio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/zhaarey/go-mp4tag"
)

// Tagger writes metadata into finished audio files, dispatching on the
// container the negotiated codec implies:
//   - MP3 gets ID3v2 frames
//   - FLAC gets a Vorbis comment block plus a picture block
//   - AAC (M4A) gets iTunes-style atoms
//
// Example:
//
//	tagger := NewTagger()
//	err := tagger.Tag(path, track, choice, coverBytes)
//	if err != nil {
//	    // tagging failure leaves the audio intact
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Tag writes the track's metadata and optional cover into the file at
// path. The cover may be nil to skip embedding.
func (t *Tagger) Tag(path string, track *model.TrackDescriptor, choice model.EncodingChoice, cover []byte) error {
	switch choice.Extension() {
	case ".mp3":
		return t.tagMP3(path, track, cover)
	case ".flac":
		return t.tagFLAC(path, track, cover)
	case ".m4a":
		return t.tagM4A(path, track, cover)
	default:
		return fmt.Errorf("no tagger for codec %q", choice.Codec)
	}
}

func (t *Tagger) tagMP3(path string, track *model.TrackDescriptor, cover []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetTitle(track.Title)
	tag.SetArtist(track.ArtistLine())
	tag.SetAlbum(track.AlbumTitle)
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, track.AlbumArtistLine())
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, fmt.Sprintf("%d/%d", track.TrackNumber, track.TotalTracks))
	if track.Genre != "" {
		tag.SetGenre(track.Genre)
	}
	if track.Label != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, track.Label)
	}
	if track.Year > 0 {
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, strconv.Itoa(track.Year))
	}

	if cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectImageMIME(cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover,
		})
	}

	return tag.Save()
}

func (t *Tagger) tagFLAC(path string, track *model.TrackDescriptor, cover []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	// Drop whatever comment and picture blocks the stream shipped with.
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()
	addVorbisField(comment, flacvorbis.FIELD_TITLE, track.Title)
	addVorbisField(comment, flacvorbis.FIELD_ARTIST, track.ArtistLine())
	addVorbisField(comment, flacvorbis.FIELD_ALBUM, track.AlbumTitle)
	addVorbisField(comment, "ALBUMARTIST", track.AlbumArtistLine())
	addVorbisField(comment, flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(track.TrackNumber))
	addVorbisField(comment, "TRACKTOTAL", strconv.Itoa(track.TotalTracks))
	addVorbisField(comment, flacvorbis.FIELD_GENRE, track.Genre)
	addVorbisField(comment, "LABEL", track.Label)
	if track.Year > 0 {
		addVorbisField(comment, flacvorbis.FIELD_DATE, strconv.Itoa(track.Year))
	}
	commentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &commentBlock)

	if cover != nil {
		picture, err := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "Front Cover", cover, detectImageMIME(cover))
		if err != nil {
			return err
		}
		pictureBlock := picture.Marshal()
		f.Meta = append(f.Meta, &pictureBlock)
	}

	return f.Save(path)
}

func (t *Tagger) tagM4A(path string, track *model.TrackDescriptor, cover []byte) error {
	tags := &mp4tag.MP4Tags{
		Title:       track.Title,
		Artist:      track.ArtistLine(),
		Album:       track.AlbumTitle,
		AlbumArtist: track.AlbumArtistLine(),
		CustomGenre: track.Genre,
		Publisher:   track.Label,
		TrackNumber: int16(track.TrackNumber),
		TrackTotal:  int16(track.TotalTracks),
	}
	if track.Year > 0 {
		tags.Date = strconv.Itoa(track.Year)
	}
	if cover != nil {
		tags.Pictures = []*mp4tag.MP4Picture{{Data: cover}}
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return err
	}
	defer mp4.Close()
	return mp4.Write(tags, []string{})
}

func addVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value != "" {
		comment.Add(field, value)
	}
}

// detectImageMIME sniffs the cover's content type from its magic bytes.
func detectImageMIME(data []byte) string {
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return "image/png"
	}
	return "image/jpeg"
}
