package yandex

import (
	"errors"
	"testing"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind model.ReferenceKind
		check    func(t *testing.T, ref model.Reference)
	}{
		{
			name:     "album",
			input:    "https://music.yandex.ru/album/123456",
			wantKind: model.KindAlbum,
			check: func(t *testing.T, ref model.Reference) {
				if ref.AlbumID != "123456" {
					t.Errorf("AlbumID = %q, want %q", ref.AlbumID, "123456")
				}
			},
		},
		{
			name:     "album with query",
			input:    "https://music.yandex.ru/album/123456?utm_source=share",
			wantKind: model.KindAlbum,
		},
		{
			name:     "album on com host",
			input:    "https://music.yandex.com/album/123456",
			wantKind: model.KindAlbum,
		},
		{
			name:     "track",
			input:    "https://music.yandex.ru/album/123/track/456",
			wantKind: model.KindTrack,
			check: func(t *testing.T, ref model.Reference) {
				if ref.AlbumID != "123" || ref.TrackID != "456" {
					t.Errorf("got album %q track %q, want 123/456", ref.AlbumID, ref.TrackID)
				}
			},
		},
		{
			name:     "artist defaults to albums mode",
			input:    "https://music.yandex.ru/artist/789",
			wantKind: model.KindArtist,
			check: func(t *testing.T, ref model.Reference) {
				if ref.Mode != model.ArtistModeAlbums {
					t.Errorf("Mode = %v, want albums", ref.Mode)
				}
			},
		},
		{
			name:     "artist albums page",
			input:    "https://music.yandex.ru/artist/789/albums",
			wantKind: model.KindArtist,
		},
		{
			name:     "artist tracks page is all mode",
			input:    "https://music.yandex.ru/artist/789/tracks",
			wantKind: model.KindArtist,
			check: func(t *testing.T, ref model.Reference) {
				if ref.Mode != model.ArtistModeAll {
					t.Errorf("Mode = %v, want all", ref.Mode)
				}
			},
		},
		{
			name:     "playlist",
			input:    "https://music.yandex.ru/users/somebody/playlists/1000",
			wantKind: model.KindPlaylist,
			check: func(t *testing.T, ref model.Reference) {
				if ref.Owner != "somebody" || ref.PlaylistKind != "1000" {
					t.Errorf("got %q/%q, want somebody/1000", ref.Owner, ref.PlaylistKind)
				}
			},
		},
		{
			name:     "favourites",
			input:    "https://music.yandex.ru/users/somebody/likes/tracks",
			wantKind: model.KindFavourites,
			check: func(t *testing.T, ref model.Reference) {
				if ref.Owner != "somebody" {
					t.Errorf("Owner = %q, want somebody", ref.Owner)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Classify(tt.input)
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}
			if ref.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", ref.Kind, tt.wantKind)
			}
			if ref.Input != tt.input {
				t.Errorf("Input = %q, want %q", ref.Input, tt.input)
			}
			if tt.check != nil {
				tt.check(t, ref)
			}
		})
	}
}

func TestClassify_Invalid(t *testing.T) {
	inputs := []string{
		"https://example.com/album/123",
		"https://music.yandex.ru/search?text=x",
		"https://music.yandex.ru/album/not-a-number",
		"not a url at all",
		"",
	}

	for _, input := range inputs {
		if _, err := Classify(input); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Classify(%q) = %v, want ErrInvalidURL", input, err)
		}
	}
}
