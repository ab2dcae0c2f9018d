package model

import "fmt"

// ReferenceKind identifies what a classified input URL points at.
type ReferenceKind int

const (
	// KindAlbum is a whole album.
	KindAlbum ReferenceKind = iota

	// KindTrack is a single track within an album.
	KindTrack

	// KindArtist is an artist discography.
	KindArtist

	// KindPlaylist is a user playlist.
	KindPlaylist

	// KindFavourites is a user's liked-tracks collection.
	KindFavourites
)

// String returns a short name for the kind, used in log output.
func (k ReferenceKind) String() string {
	switch k {
	case KindAlbum:
		return "album"
	case KindTrack:
		return "track"
	case KindArtist:
		return "artist"
	case KindPlaylist:
		return "playlist"
	case KindFavourites:
		return "favourites"
	default:
		return "unknown"
	}
}

// ArtistMode selects how an artist reference expands.
type ArtistMode int

const (
	// ArtistModeAlbums expands each of the artist's albums in release
	// order, newest first per the API ordering.
	ArtistModeAlbums ArtistMode = iota

	// ArtistModeAll expands the union of tracks across all albums,
	// de-duplicated by track id with the first occurrence winning.
	ArtistModeAll
)

// Reference is a classified user input. It is immutable once created:
// the classifier builds it from one input line, the resolver consumes it
// once, and it is discarded.
type Reference struct {
	Kind ReferenceKind

	// AlbumID is set for KindAlbum and KindTrack.
	AlbumID string

	// TrackID is set for KindTrack.
	TrackID string

	// ArtistID and Mode are set for KindArtist.
	ArtistID string
	Mode     ArtistMode

	// Owner is the owning user login for KindPlaylist and KindFavourites.
	// PlaylistKind is the playlist's numeric kind for KindPlaylist.
	Owner        string
	PlaylistKind string

	// Input is the raw URL the reference was classified from,
	// kept for reporting.
	Input string
}

// AlbumReference builds a Reference for a whole album.
func AlbumReference(albumID string) Reference {
	return Reference{Kind: KindAlbum, AlbumID: albumID}
}

// TrackReference builds a Reference for a single track within an album.
func TrackReference(albumID, trackID string) Reference {
	return Reference{Kind: KindTrack, AlbumID: albumID, TrackID: trackID}
}

// ArtistReference builds a Reference for an artist discography.
func ArtistReference(artistID string, mode ArtistMode) Reference {
	return Reference{Kind: KindArtist, ArtistID: artistID, Mode: mode}
}

// PlaylistReference builds a Reference for a user playlist.
func PlaylistReference(owner, kind string) Reference {
	return Reference{Kind: KindPlaylist, Owner: owner, PlaylistKind: kind}
}

// FavouritesReference builds a Reference for a user's liked tracks.
func FavouritesReference(owner string) Reference {
	return Reference{Kind: KindFavourites, Owner: owner}
}

// Describe returns a human-readable identity for the reference,
// used in progress messages and the run report.
func (r Reference) Describe() string {
	switch r.Kind {
	case KindAlbum:
		return fmt.Sprintf("album %s", r.AlbumID)
	case KindTrack:
		return fmt.Sprintf("track %s (album %s)", r.TrackID, r.AlbumID)
	case KindArtist:
		if r.Mode == ArtistModeAll {
			return fmt.Sprintf("artist %s (all tracks)", r.ArtistID)
		}
		return fmt.Sprintf("artist %s (albums)", r.ArtistID)
	case KindPlaylist:
		return fmt.Sprintf("playlist %s/%s", r.Owner, r.PlaylistKind)
	case KindFavourites:
		return fmt.Sprintf("favourites of %s", r.Owner)
	default:
		return "unknown reference"
	}
}
