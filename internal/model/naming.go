package model

import (
	"fmt"
	"regexp"
	"strings"
)

// NamingContext holds the per-track values substituted into the file
// naming template. It is derived from a TrackDescriptor and never
// mutated.
type NamingContext struct {
	Artist      string
	Title       string
	TrackNum    int
	TrackNumPad string
}

// NewNamingContext derives the naming context for a descriptor. The
// padded track number is zero-filled to the width of the track total,
// so an 8-track album pads to one digit and a 120-track playlist pads
// to three.
func NewNamingContext(t *TrackDescriptor) NamingContext {
	return NamingContext{
		Artist:      t.ArtistLine(),
		Title:       t.Title,
		TrackNum:    t.TrackNumber,
		TrackNumPad: PadTrackNumber(t.TrackNumber, t.TotalTracks),
	}
}

// PadTrackNumber zero-pads num to the decimal width of total.
func PadTrackNumber(num, total int) string {
	width := len(fmt.Sprintf("%d", total))
	return fmt.Sprintf("%0*d", width, num)
}

// Render substitutes the recognized placeholders into the naming
// template and sanitizes the result for use as a file name. The file
// extension is appended by the caller once the codec is known.
//
// Recognized placeholders: {artist}, {title}, {track_num},
// {track_num_pad}.
func (n NamingContext) Render(template string) string {
	name := template
	name = strings.ReplaceAll(name, "{artist}", n.Artist)
	name = strings.ReplaceAll(name, "{title}", n.Title)
	name = strings.ReplaceAll(name, "{track_num}", fmt.Sprintf("%d", n.TrackNum))
	name = strings.ReplaceAll(name, "{track_num_pad}", n.TrackNumPad)
	return SanitizeFileName(name)
}

// TemplateIsValid reports whether every {placeholder} in the template is
// one the renderer recognizes.
func TemplateIsValid(template string) bool {
	re := regexp.MustCompile(`\{([^{}]*)\}`)
	for _, m := range re.FindAllStringSubmatch(template, -1) {
		switch m[1] {
		case "artist", "title", "track_num", "track_num_pad":
		default:
			return false
		}
	}
	return true
}

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	multiSpace       = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in
// file and folder names.
//
// Transformations:
//   - Invalid characters (<>:"/\|?* and control chars) become underscores
//   - Trailing dots are removed (Windows limitation)
//   - Runs of whitespace collapse to a single space
//   - Leading/trailing whitespace is removed
func SanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
