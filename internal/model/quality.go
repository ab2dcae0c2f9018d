package model

import "fmt"

// QualityTier is the requested audio codec/bitrate class for a run.
//
// The tiers map to the numeric formats accepted on the command line and
// to the quality strings the API expects:
//
//	1 = AAC 64    ("lq")
//	2 = AAC 192   ("nq")
//	3 = AAC 256 / MP3 320 ("hq")
//	4 = FLAC      ("lossless")
type QualityTier int

const (
	TierAAC64 QualityTier = iota + 1
	TierAAC192
	TierHigh
	TierLossless
)

// TierFromFormat converts the numeric format option (1-4) to a tier.
func TierFromFormat(format int) (QualityTier, error) {
	if format < int(TierAAC64) || format > int(TierLossless) {
		return 0, fmt.Errorf("format must be between 1 and 4, got %d", format)
	}
	return QualityTier(format), nil
}

// APIString returns the quality string the API expects for the tier.
func (q QualityTier) APIString() string {
	switch q {
	case TierAAC64:
		return "lq"
	case TierAAC192:
		return "nq"
	case TierHigh:
		return "hq"
	case TierLossless:
		return "lossless"
	default:
		return ""
	}
}

// String returns a human-readable name for the tier.
func (q QualityTier) String() string {
	switch q {
	case TierAAC64:
		return "AAC 64"
	case TierAAC192:
		return "AAC 192"
	case TierHigh:
		return "AAC 256 / MP3 320"
	case TierLossless:
		return "FLAC"
	default:
		return "unknown"
	}
}

// Matches reports whether a codec/bitrate pair returned by the API
// belongs to this tier. The negotiator uses this to reject silent
// downgrades: a response outside the requested tier is treated as the
// tier being unavailable, never substituted.
func (q QualityTier) Matches(codec string, bitrate int) bool {
	switch q {
	case TierLossless:
		return codec == CodecFLAC
	case TierHigh:
		return (isAACCodec(codec) && bitrate == 256) || (codec == CodecMP3 && bitrate == 320)
	case TierAAC192:
		return isAACCodec(codec) && bitrate == 192
	case TierAAC64:
		return isAACCodec(codec) && bitrate == 64
	default:
		return false
	}
}

// Codec names as the API reports them.
const (
	CodecFLAC  = "flac"
	CodecMP3   = "mp3"
	CodecAAC   = "aac"
	CodecHEAAC = "he-aac"
)

func isAACCodec(codec string) bool {
	return codec == CodecAAC || codec == CodecHEAAC
}

// FileExtension returns the container extension for a codec, or an
// empty string for codecs the service is not known to serve.
func FileExtension(codec string) string {
	switch codec {
	case CodecFLAC:
		return ".flac"
	case CodecMP3:
		return ".mp3"
	case CodecAAC, CodecHEAAC:
		return ".m4a"
	default:
		return ""
	}
}

// Encoding is one advertised codec/tier combination for a track.
type Encoding struct {
	Codec string
	Tier  QualityTier
}

// EncodingChoice is the negotiated encoding for one track. Stream URLs
// are short-lived and signed, so a choice is derived immediately before
// download and never reused for another track or attempt.
type EncodingChoice struct {
	Codec     string
	Bitrate   int
	StreamURL string
}

// Extension returns the file extension for the chosen codec.
func (c EncodingChoice) Extension() string {
	return FileExtension(c.Codec)
}

// Describe returns the encoding label used in progress output,
// e.g. "FLAC" or "320 Kbps MP3".
func (c EncodingChoice) Describe() string {
	switch c.Codec {
	case CodecFLAC:
		return "FLAC"
	case CodecMP3:
		return fmt.Sprintf("%d Kbps MP3", c.Bitrate)
	case CodecAAC, CodecHEAAC:
		return fmt.Sprintf("%d Kbps AAC", c.Bitrate)
	default:
		return c.Codec
	}
}
