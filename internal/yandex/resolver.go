package yandex

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex/dto"
	"golang.org/x/sync/errgroup"
)

// Resolver expands classified references into ordered track
// descriptors, following pagination where the API pages its
// collections.
//
// Expansion of a single reference is strictly order-preserving: album
// track order, playlist page-then-item order, artist release-then-track
// order. References in one batch are independent and resolve in
// parallel, but the results come back in input order.
type Resolver struct {
	client *Client

	// maxParallel bounds concurrent reference resolution.
	maxParallel int
}

// NewResolver creates a Resolver around an authenticated client.
func NewResolver(client *Client, maxParallel int) *Resolver {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Resolver{client: client, maxParallel: maxParallel}
}

// Resolution is the outcome of expanding one reference. Either Tracks
// is populated (possibly with a pagination warning) or Err is set; a
// failed reference never aborts its batch siblings.
type Resolution struct {
	Reference model.Reference
	Tracks    []*model.TrackDescriptor

	// Warning is set when pagination ended early on a malformed page;
	// the tracks from earlier pages are kept.
	Warning string

	Err error
}

// ResolveAll expands a batch of references with bounded parallelism.
// The returned slice is in input order. Only credential-level faults
// produce a non-nil error; everything else is captured per reference.
func (r *Resolver) ResolveAll(ctx context.Context, refs []model.Reference) ([]Resolution, error) {
	results := make([]Resolution, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			res := r.Resolve(ctx, ref)
			results[i] = res
			if IsFatal(res.Err) {
				return res.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Resolve expands one reference into its ordered track descriptors.
func (r *Resolver) Resolve(ctx context.Context, ref model.Reference) Resolution {
	res := Resolution{Reference: ref}

	switch ref.Kind {
	case model.KindAlbum:
		res.Tracks, res.Err = r.resolveAlbum(ctx, ref.AlbumID, "")
	case model.KindTrack:
		res.Tracks, res.Err = r.resolveAlbum(ctx, ref.AlbumID, ref.TrackID)
	case model.KindArtist:
		res.Tracks, res.Warning, res.Err = r.resolveArtist(ctx, ref.ArtistID, ref.Mode)
	case model.KindPlaylist:
		res.Tracks, res.Warning, res.Err = r.resolvePlaylist(ctx, ref.Owner, ref.PlaylistKind)
	case model.KindFavourites:
		res.Tracks, res.Warning, res.Err = r.resolveFavourites(ctx, ref.Owner)
	default:
		res.Err = fmt.Errorf("cannot resolve reference kind %v", ref.Kind)
	}

	return res
}

// resolveAlbum expands an album into descriptors in album order.
// When onlyTrackID is set, the result is narrowed to that single track
// while keeping its position-derived numbering.
func (r *Resolver) resolveAlbum(ctx context.Context, albumID, onlyTrackID string) ([]*model.TrackDescriptor, error) {
	album, err := r.client.AlbumWithTracks(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !album.Available {
		return nil, &APIError{Kind: KindNotFound, Op: "album " + albumID, Err: fmt.Errorf("album is unavailable")}
	}

	tracks := descriptorsFromAlbum(album)

	if onlyTrackID == "" {
		return tracks, nil
	}
	for _, t := range tracks {
		if t.TrackID == onlyTrackID {
			return []*model.TrackDescriptor{t}, nil
		}
	}
	return nil, &APIError{Kind: KindNotFound, Op: "album " + albumID, Err: fmt.Errorf("track %s not found in album", onlyTrackID)}
}

// resolveArtist expands an artist discography. Albums mode expands each
// direct album in the API's newest-first order; all mode additionally
// de-duplicates by track id, first occurrence winning.
func (r *Resolver) resolveArtist(ctx context.Context, artistID string, mode model.ArtistMode) ([]*model.TrackDescriptor, string, error) {
	var albumIDs []string
	warning := ""

	for page := 0; ; page++ {
		result, err := r.client.ArtistDirectAlbums(ctx, artistID, page)
		if err != nil {
			if fault, ok := paginationFault(err, page); ok {
				warning = fault
				break
			}
			return nil, "", err
		}
		for _, album := range result.Albums {
			albumIDs = append(albumIDs, strconv.FormatInt(album.ID, 10))
		}
		if !result.Pager.HasMore() || len(result.Albums) == 0 {
			break
		}
	}

	if len(albumIDs) == 0 && warning == "" {
		return nil, "", &APIError{Kind: KindNotFound, Op: "artist " + artistID, Err: fmt.Errorf("artist has no albums")}
	}

	var tracks []*model.TrackDescriptor
	seen := make(map[string]struct{})

	for _, albumID := range albumIDs {
		albumTracks, err := r.resolveAlbum(ctx, albumID, "")
		if err != nil {
			if IsFatal(err) {
				return nil, "", err
			}
			// One withdrawn album should not sink the discography.
			continue
		}
		for _, t := range albumTracks {
			if mode == model.ArtistModeAll {
				if _, dup := seen[t.TrackID]; dup {
					continue
				}
				seen[t.TrackID] = struct{}{}
			}
			tracks = append(tracks, t)
		}
	}

	return tracks, warning, nil
}

// resolvePlaylist pages through a user playlist until the API reports
// no further pages, accumulating tracks in page-then-item order.
func (r *Resolver) resolvePlaylist(ctx context.Context, owner, kind string) ([]*model.TrackDescriptor, string, error) {
	var (
		items      []dto.PlaylistItem
		title      string
		ownerLogin string
		total      int
		warning    string
	)

	for page := 0; ; page++ {
		result, err := r.client.PlaylistPage(ctx, owner, kind, page)
		if err != nil {
			if fault, ok := paginationFault(err, page); ok {
				warning = fault
				break
			}
			return nil, "", err
		}
		if page == 0 {
			if !result.Available {
				return nil, "", &APIError{Kind: KindNotFound, Op: "playlist " + owner + "/" + kind, Err: fmt.Errorf("playlist is unavailable")}
			}
			title = result.Title
			ownerLogin = result.Owner.Login
			if ownerLogin == "" {
				ownerLogin = owner
			}
			total = result.TrackCount
		}
		items = append(items, result.Tracks...)
		if !result.Pager.HasMore() || len(result.Tracks) == 0 {
			break
		}
	}

	if total == 0 {
		total = len(items)
	}
	folder := model.SanitizeFileName(ownerLogin + " - " + title)
	return descriptorsFromItems(items, folder, total), warning, nil
}

// resolveFavourites pages through a user's liked tracks.
func (r *Resolver) resolveFavourites(ctx context.Context, owner string) ([]*model.TrackDescriptor, string, error) {
	var (
		items   []dto.PlaylistItem
		warning string
	)

	for page := 0; ; page++ {
		result, err := r.client.LikesPage(ctx, owner, page)
		if err != nil {
			if fault, ok := paginationFault(err, page); ok {
				warning = fault
				break
			}
			return nil, "", err
		}
		items = append(items, result.Tracks...)
		if !result.Pager.HasMore() || len(result.Tracks) == 0 {
			break
		}
	}

	folder := model.SanitizeFileName(owner + " - Favourites")
	return descriptorsFromItems(items, folder, len(items)), warning, nil
}

// paginationFault reports whether an error on a follow-up page should
// end pagination with a warning instead of failing the reference.
// Already-fetched pages are kept rather than thrown away.
func paginationFault(err error, page int) (string, bool) {
	if page == 0 {
		return "", false
	}
	if kind, ok := KindOf(err); ok && kind == KindMalformed {
		return fmt.Sprintf("pagination stopped at page %d: malformed page response", page), true
	}
	return "", false
}

// descriptorsFromAlbum flattens an album's volumes into descriptors
// with continuous track numbering.
func descriptorsFromAlbum(album *dto.AlbumResult) []*model.TrackDescriptor {
	albumArtists := artistNames(album.Artists)
	folder := model.SanitizeFileName(strings.Join(albumArtists, ", ") + " - " + album.Title)
	albumID := strconv.FormatInt(album.ID, 10)

	total := 0
	for _, volume := range album.Volumes {
		total += len(volume)
	}

	var tracks []*model.TrackDescriptor
	num := 0
	for _, volume := range album.Volumes {
		for _, tr := range volume {
			num++
			tracks = append(tracks, &model.TrackDescriptor{
				TrackID:            tr.ID,
				AlbumID:            albumID,
				Title:              tr.Title,
				Artists:            artistNames(tr.Artists),
				AlbumArtists:       albumArtists,
				TrackNumber:        num,
				TotalTracks:        total,
				DurationMs:         tr.DurationMs,
				AlbumTitle:         album.Title,
				FolderName:         folder,
				CoverURITemplate:   album.CoverURI,
				Available:          tr.Available,
				HasSyncLyrics:      tr.LyricsInfo.HasAvailableSyncLyrics,
				AvailableEncodings: encodingsFromCodecs(tr.Codecs),
				Genre:              album.Genre,
				Label:              labelNames(album.Labels),
				Year:               album.Year,
			})
		}
	}
	return tracks
}

// descriptorsFromItems converts playlist/likes entries into descriptors
// numbered by their position in the collection.
func descriptorsFromItems(items []dto.PlaylistItem, folder string, total int) []*model.TrackDescriptor {
	var tracks []*model.TrackDescriptor
	for i, item := range items {
		tr := item.Track

		desc := &model.TrackDescriptor{
			TrackID:          tr.ID,
			Title:            tr.Title,
			Artists:          artistNames(tr.Artists),
			TrackNumber:      i + 1,
			TotalTracks:      total,
			DurationMs:       tr.DurationMs,
			FolderName:       folder,
			CoverURITemplate: tr.CoverURI,
			Available:        tr.Available,
			HasSyncLyrics:    tr.LyricsInfo.HasAvailableSyncLyrics,
		}

		if len(tr.Albums) > 0 {
			album := tr.Albums[0]
			desc.AlbumID = strconv.FormatInt(album.ID, 10)
			desc.AlbumTitle = album.Title
			desc.AlbumArtists = artistNames(album.Artists)
			desc.Genre = album.Genre
			desc.Label = labelNames(album.Labels)
			desc.Year = album.Year
			if !album.Available {
				desc.Available = false
			}
		}

		tracks = append(tracks, desc)
	}
	return tracks
}

// encodingsFromCodecs parses advertised codec strings like "aac-192",
// "mp3-320" or "flac" into the model's encoding set. Unknown entries
// are dropped; an empty result means the set is unknown.
func encodingsFromCodecs(codecs []string) []model.Encoding {
	var encodings []model.Encoding
	for _, c := range codecs {
		if c == model.CodecFLAC {
			encodings = append(encodings, model.Encoding{Codec: model.CodecFLAC, Tier: model.TierLossless})
			continue
		}
		idx := strings.LastIndex(c, "-")
		if idx < 1 {
			continue
		}
		codec := c[:idx]
		bitrate, err := strconv.Atoi(c[idx+1:])
		if err != nil {
			continue
		}
		for _, tier := range []model.QualityTier{model.TierAAC64, model.TierAAC192, model.TierHigh, model.TierLossless} {
			if tier.Matches(codec, bitrate) {
				encodings = append(encodings, model.Encoding{Codec: codec, Tier: tier})
				break
			}
		}
	}
	return encodings
}

func artistNames(artists []dto.Artist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

func labelNames(labels []dto.Label) string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return strings.Join(names, ", ")
}
