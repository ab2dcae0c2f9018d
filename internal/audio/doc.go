// Package audio assembles downloaded streams into finished artifacts.
//
// The Assembler owns path computation, atomic placement of audio bytes,
// the per-album folder cover and the lyrics sidecar. The Tagger writes
// metadata into the placed file, dispatching on container format: ID3v2
// frames for MP3, a Vorbis comment and picture block for FLAC, and
// iTunes-style atoms for M4A.
//
// # Assembly
//
//	asm := audio.NewAssembler(audio.Options{
//	    OutputRoot:  "/music",
//	    Template:    "{track_num_pad}. {title}",
//	    WriteCovers: true,
//	})
//
//	dir, path := asm.TrackPath(track, choice)
//	err := asm.SaveAudio(dir, path, stream)
//	err = asm.FinishTrack(path, track, choice, cover)
//
// A failure between SaveAudio and FinishTrack leaves a playable but
// untagged file; a failure during SaveAudio leaves nothing at the final
// path.
package audio
