// Package yandex implements the service-facing half of the pipeline:
// the authenticated API client, the reference classifier, the resolver
// and the format negotiator.
//
// # Client
//
// Client owns the OAuth credential and classifies every failure into
// the APIError taxonomy the orchestrator acts on:
//
//	client, err := yandex.NewClient(ctx, token)
//	if yandex.IsFatal(err) {
//	    // invalid/expired credential, abort the run
//	}
//
// # Classification and resolution
//
// Classify turns input URLs into typed references; Resolver expands
// them into ordered track descriptors, following pagination:
//
//	ref, _ := yandex.Classify("https://music.yandex.ru/album/123")
//	resolver := yandex.NewResolver(client, 4)
//	res := resolver.Resolve(ctx, ref)
//	for _, track := range res.Tracks {
//	    fmt.Println(track.TrackNumber, track.Title)
//	}
//
// # Negotiation
//
// Negotiator matches the configured quality tier exactly; the service
// offering anything else for a track yields ErrUnavailableEncoding for
// that track rather than a silent downgrade:
//
//	choice, err := negotiator.Negotiate(ctx, track, model.TierLossless)
//	if yandex.IsUnavailableEncoding(err) {
//	    // skip this track, keep the run going
//	}
package yandex
