package yandex

import (
	"fmt"
	"regexp"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

// URL forms the classifier recognizes. Query strings are tolerated and
// ignored; both the .ru and .com hosts are accepted.
var (
	albumRe      = regexp.MustCompile(`^https?://music\.yandex\.(?:ru|com)/album/(\d+)(?:/track/(\d+))?/?(?:\?.*)?$`)
	artistRe     = regexp.MustCompile(`^https?://music\.yandex\.(?:ru|com)/artist/(\d+)(?:/(albums|tracks))?/?(?:\?.*)?$`)
	favouritesRe = regexp.MustCompile(`^https?://music\.yandex\.(?:ru|com)/users/([^/?]+)/likes/tracks/?(?:\?.*)?$`)
	playlistRe   = regexp.MustCompile(`^https?://music\.yandex\.(?:ru|com)/users/([^/?]+)/playlists/(\d+)/?(?:\?.*)?$`)
)

// Classify turns one input line into a typed Reference.
//
// Recognized forms:
//
//	https://music.yandex.ru/album/123
//	https://music.yandex.ru/album/123/track/456
//	https://music.yandex.ru/artist/789            (albums mode)
//	https://music.yandex.ru/artist/789/albums     (albums mode)
//	https://music.yandex.ru/artist/789/tracks     (all-tracks mode)
//	https://music.yandex.ru/users/name/playlists/1000
//	https://music.yandex.ru/users/name/likes/tracks
//
// Anything else returns ErrInvalidURL.
func Classify(input string) (model.Reference, error) {
	if m := albumRe.FindStringSubmatch(input); m != nil {
		var ref model.Reference
		if m[2] != "" {
			ref = model.TrackReference(m[1], m[2])
		} else {
			ref = model.AlbumReference(m[1])
		}
		ref.Input = input
		return ref, nil
	}

	if m := artistRe.FindStringSubmatch(input); m != nil {
		mode := model.ArtistModeAlbums
		if m[2] == "tracks" {
			mode = model.ArtistModeAll
		}
		ref := model.ArtistReference(m[1], mode)
		ref.Input = input
		return ref, nil
	}

	if m := favouritesRe.FindStringSubmatch(input); m != nil {
		ref := model.FavouritesReference(m[1])
		ref.Input = input
		return ref, nil
	}

	if m := playlistRe.FindStringSubmatch(input); m != nil {
		ref := model.PlaylistReference(m[1], m[2])
		ref.Input = input
		return ref, nil
	}

	return model.Reference{}, fmt.Errorf("%w: %s", ErrInvalidURL, input)
}
