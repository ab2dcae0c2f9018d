// Package model defines the core data structures used throughout
// the downloader.
//
// # Reference
//
// Reference is a classified user input identifying an album, a single
// track, an artist discography, a user playlist, or a user's favourites:
//
//	ref := model.AlbumReference("12345")
//	fmt.Println(ref.Kind) // model.KindAlbum
//
// # TrackDescriptor
//
// TrackDescriptor is the resolved metadata for one downloadable track.
// Descriptors are produced by the resolver and are read-only afterwards.
//
// # QualityTier
//
// QualityTier is the requested codec/bitrate class for a run. Exactly one
// tier is active per run and it is applied uniformly to every track:
//
//	tier, err := model.TierFromFormat(4) // FLAC
//	fmt.Println(tier.APIString())        // "lossless"
//
// # NamingContext
//
// NamingContext carries the per-track values substituted into the file
// naming template. Recognized placeholders: {artist}, {title},
// {track_num}, {track_num_pad}.
//
// # RunReport
//
// RunReport accumulates one DownloadResult per resolved track and is the
// only state that survives a run.
package model
