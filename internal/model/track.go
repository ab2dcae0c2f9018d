package model

import "strings"

// TrackDescriptor is the resolved metadata for one downloadable track.
//
// Descriptors are created by the resolver from API metadata and are
// read-only afterwards. They live in memory for the duration of one run.
// Track numbering reflects the track's position within its parent
// reference (album order, playlist page-then-item order), which the
// pipeline preserves end to end.
type TrackDescriptor struct {
	// TrackID and AlbumID identify the track on the service.
	TrackID string
	AlbumID string

	// Title is the track title.
	Title string

	// Artists are the track artists in the order the API lists them.
	Artists []string

	// AlbumArtists are the parent album's artists, used for the album
	// artist tag and the album folder name.
	AlbumArtists []string

	// TrackNumber is the 1-based position within the parent reference.
	// TotalTracks is the number of siblings in that reference.
	TrackNumber int
	TotalTracks int

	// DurationMs is the track length in milliseconds.
	DurationMs int64

	// AlbumTitle is the parent album's title, used for the album tag.
	AlbumTitle string

	// FolderName is the sanitized directory the track is placed under:
	// "Album Artist - Album Title" for album expansions, "owner -
	// Playlist Title" for playlists and favourites.
	FolderName string

	// CoverURITemplate is the album art URI with a `%%` size placeholder,
	// e.g. "avatars.example.net/get-music-content/abc/%%".
	CoverURITemplate string

	// Available reports whether the service will serve this track.
	// Unavailable tracks stay in the expansion so the run report can
	// account for them, but they are skipped without negotiation.
	Available bool

	// HasSyncLyrics reports whether timed lyrics exist for the track.
	HasSyncLyrics bool

	// AvailableEncodings is the advertised encoding set when the API
	// provides one. An empty set means unknown; the negotiator then has
	// to ask the API for the configured tier directly.
	AvailableEncodings []Encoding

	// Genre, Label and Year are album-level tag values.
	Genre string
	Label string
	Year  int
}

// ArtistLine joins the track artists with the documented ", " separator.
func (t *TrackDescriptor) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// AlbumArtistLine joins the album artists with the ", " separator.
func (t *TrackDescriptor) AlbumArtistLine() string {
	return strings.Join(t.AlbumArtists, ", ")
}

// OffersTier reports whether the advertised encoding set contains the
// tier. When the set is empty the answer is unknown and true is
// returned, leaving the decision to the API.
func (t *TrackDescriptor) OffersTier(tier QualityTier) bool {
	if len(t.AvailableEncodings) == 0 {
		return true
	}
	for _, enc := range t.AvailableEncodings {
		if enc.Tier == tier {
			return true
		}
	}
	return false
}
