// Package dto holds the wire representations of API responses.
//
// Every endpoint wraps its payload in a {"result": ...} envelope; the
// types here mirror that shape so decoding stays a single Unmarshal per
// call, as the desktop client's traffic shows.
package dto

// Artist is one credited artist.
type Artist struct {
	Name string `json:"name"`
}

// Label is one publishing label.
type Label struct {
	Name string `json:"name"`
}

// LyricsInfo describes lyric availability for a track.
type LyricsInfo struct {
	HasAvailableSyncLyrics bool `json:"hasAvailableSyncLyrics"`
}

// AccountResult is the payload of /account/about.
type AccountResult struct {
	HasPlus bool   `json:"hasPlus"`
	Login   string `json:"login"`
}

// Account wraps AccountResult.
type Account struct {
	Result AccountResult `json:"result"`
}

// AlbumTrack is one track entry inside an album's volume listing.
type AlbumTrack struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Artists    []Artist   `json:"artists"`
	Available  bool       `json:"available"`
	DurationMs int64      `json:"durationMs"`
	LyricsInfo LyricsInfo `json:"lyricsInfo"`

	// Codecs lists the advertised encodings when the service includes
	// them, e.g. ["aac-64", "aac-192", "flac"]. Often absent.
	Codecs []string `json:"codecs"`
}

// AlbumResult is the payload of /albums/{id}/with-tracks.
type AlbumResult struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Artists   []Artist       `json:"artists"`
	Available bool           `json:"available"`
	CoverURI  string         `json:"coverUri"`
	Genre     string         `json:"genre"`
	Labels    []Label        `json:"labels"`
	Volumes   [][]AlbumTrack `json:"volumes"`
	Year      int            `json:"year"`
}

// AlbumMeta wraps AlbumResult.
type AlbumMeta struct {
	Result AlbumResult `json:"result"`
}

// Pager is the offset pagination block on collection endpoints.
type Pager struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// HasMore reports whether pages remain after this one.
func (p Pager) HasMore() bool {
	return (p.Page+1)*p.PerPage < p.Total
}

// ArtistAlbumsResult is one page of /artists/{id}/direct-albums.
type ArtistAlbumsResult struct {
	Albums []AlbumResult `json:"albums"`
	Pager  Pager         `json:"pager"`
}

// ArtistAlbums wraps ArtistAlbumsResult.
type ArtistAlbums struct {
	Result ArtistAlbumsResult `json:"result"`
}

// PlaylistTrack is the track payload inside playlist and likes entries.
type PlaylistTrack struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Artists    []Artist      `json:"artists"`
	Albums     []AlbumResult `json:"albums"`
	Available  bool          `json:"available"`
	CoverURI   string        `json:"coverUri"`
	DurationMs int64         `json:"durationMs"`
	LyricsInfo LyricsInfo    `json:"lyricsInfo"`
}

// PlaylistItem is one positioned entry in a playlist page.
type PlaylistItem struct {
	Track PlaylistTrack `json:"track"`
}

// Owner identifies the playlist owner.
type Owner struct {
	Login string `json:"login"`
}

// PlaylistResult is one page of /users/{owner}/playlists/{kind}.
type PlaylistResult struct {
	Title      string         `json:"title"`
	Owner      Owner          `json:"owner"`
	Available  bool           `json:"available"`
	TrackCount int            `json:"trackCount"`
	Tracks     []PlaylistItem `json:"tracks"`
	Pager      Pager          `json:"pager"`
}

// PlaylistMeta wraps PlaylistResult.
type PlaylistMeta struct {
	Result PlaylistResult `json:"result"`
}

// LikesResult is one page of /users/{owner}/likes/tracks.
type LikesResult struct {
	Tracks []PlaylistItem `json:"tracks"`
	Pager  Pager          `json:"pager"`
}

// Likes wraps LikesResult.
type Likes struct {
	Result LikesResult `json:"result"`
}

// DownloadInfo is the negotiated stream for one track at one quality.
type DownloadInfo struct {
	URL     string `json:"url"`
	Bitrate int    `json:"bitrate"`
	Codec   string `json:"codec"`
}

// FileInfoResult wraps DownloadInfo under its API key.
type FileInfoResult struct {
	DownloadInfo DownloadInfo `json:"downloadInfo"`
}

// FileInfo wraps FileInfoResult.
type FileInfo struct {
	Result FileInfoResult `json:"result"`
}

// LyricsResult is the payload of /tracks/{id}/lyrics.
type LyricsResult struct {
	DownloadURL string `json:"downloadUrl"`
}

// LyricsMeta wraps LyricsResult.
type LyricsMeta struct {
	Result LyricsResult `json:"result"`
}
