package yandex

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

// Negotiator selects a concrete encoding for one track against the
// run's configured quality tier.
//
// The tier is matched exactly: the negotiator asks the API for the
// configured tier and verifies the returned codec and bitrate belong to
// it. A response outside the tier — the service quietly serving a lower
// quality — is treated as the tier being unavailable for that track,
// never silently accepted.
//
// Stream URLs in the returned choice are short-lived and signed, so
// negotiation happens immediately before each download attempt and a
// choice is never reused.
type Negotiator struct {
	client *Client
}

// NewNegotiator creates a Negotiator around an authenticated client.
func NewNegotiator(client *Client) *Negotiator {
	return &Negotiator{client: client}
}

// Negotiate resolves the stream for one track at the requested tier.
// Returns ErrUnavailableEncoding (wrapped) when the service does not
// offer the tier for this track.
func (n *Negotiator) Negotiate(ctx context.Context, track *model.TrackDescriptor, tier model.QualityTier) (*model.EncodingChoice, error) {
	// A populated encoding set that excludes the tier settles the
	// question without a round trip.
	if !track.OffersTier(tier) {
		return nil, fmt.Errorf("%w: %s offers no %s", ErrUnavailableEncoding, track.Title, tier)
	}

	info, err := n.client.FileInfo(ctx, track.TrackID, tier.APIString())
	if err != nil {
		if kind, ok := KindOf(err); ok && kind == KindNotFound {
			return nil, fmt.Errorf("%w: %v", ErrUnavailableEncoding, err)
		}
		return nil, err
	}

	if model.FileExtension(info.Codec) == "" {
		return nil, fmt.Errorf("%w: api returned unknown codec %q", ErrUnavailableEncoding, info.Codec)
	}
	if !tier.Matches(info.Codec, info.Bitrate) {
		return nil, fmt.Errorf("%w: requested %s, api offered %s %d", ErrUnavailableEncoding, tier, info.Codec, info.Bitrate)
	}

	return &model.EncodingChoice{
		Codec:     info.Codec,
		Bitrate:   info.Bitrate,
		StreamURL: info.URL,
	}, nil
}

// IsUnavailableEncoding reports whether an error is a per-track
// encoding-availability failure.
func IsUnavailableEncoding(err error) bool {
	return errors.Is(err, ErrUnavailableEncoding)
}
