package yandex

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
)

func fileInfoHandler(codec string, bitrate int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/get-file-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"result":{"downloadInfo":{"url":"https://cdn.example/stream","bitrate":%d,"codec":%q}}}`, bitrate, codec)
	})
	return mux
}

func TestNegotiator_ExactTier(t *testing.T) {
	track := &model.TrackDescriptor{TrackID: "42", Title: "Song"}

	tests := []struct {
		name        string
		tier        model.QualityTier
		codec       string
		bitrate     int
		wantOK      bool
		wantCodec   string
		wantBitrate int
	}{
		{
			name: "lossless served flac", tier: model.TierLossless,
			codec: model.CodecFLAC, bitrate: 1411,
			wantOK: true, wantCodec: model.CodecFLAC, wantBitrate: 1411,
		},
		{
			name: "high tier served mp3 320", tier: model.TierHigh,
			codec: model.CodecMP3, bitrate: 320,
			wantOK: true, wantCodec: model.CodecMP3, wantBitrate: 320,
		},
		{
			name: "high tier served aac 256", tier: model.TierHigh,
			codec: model.CodecAAC, bitrate: 256,
			wantOK: true, wantCodec: model.CodecAAC, wantBitrate: 256,
		},
		{
			// The service quietly serving a lower quality is a refusal,
			// not a downgrade.
			name: "lossless answered with aac", tier: model.TierLossless,
			codec: model.CodecAAC, bitrate: 256,
			wantOK: false,
		},
		{
			name: "high tier answered with aac 192", tier: model.TierHigh,
			codec: model.CodecAAC, bitrate: 192,
			wantOK: false,
		},
		{
			name: "unknown codec", tier: model.TierHigh,
			codec: "opus", bitrate: 256,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, fileInfoHandler(tt.codec, tt.bitrate))
			negotiator := NewNegotiator(client)

			choice, err := negotiator.Negotiate(context.Background(), track, tt.tier)
			if !tt.wantOK {
				if !IsUnavailableEncoding(err) {
					t.Fatalf("got %v, want ErrUnavailableEncoding", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Negotiate: %v", err)
			}
			if choice.Codec != tt.wantCodec || choice.Bitrate != tt.wantBitrate {
				t.Errorf("choice = %s %d, want %s %d", choice.Codec, choice.Bitrate, tt.wantCodec, tt.wantBitrate)
			}
			if choice.StreamURL == "" {
				t.Error("choice has no stream URL")
			}
		})
	}
}

func TestNegotiator_AdvertisedSetShortCircuits(t *testing.T) {
	// No handler is needed: a populated encoding set without the tier
	// must fail before any request goes out.
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected API call")
	}))
	negotiator := NewNegotiator(client)

	track := &model.TrackDescriptor{
		TrackID: "42",
		Title:   "Song",
		AvailableEncodings: []model.Encoding{
			{Codec: model.CodecAAC, Tier: model.TierAAC192},
		},
	}

	_, err := negotiator.Negotiate(context.Background(), track, model.TierLossless)
	if !IsUnavailableEncoding(err) {
		t.Errorf("got %v, want ErrUnavailableEncoding", err)
	}
}

func TestNegotiator_NotFoundMeansUnavailable(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	negotiator := NewNegotiator(client)

	track := &model.TrackDescriptor{TrackID: "42", Title: "Song"}
	_, err := negotiator.Negotiate(context.Background(), track, model.TierLossless)
	if !IsUnavailableEncoding(err) {
		t.Errorf("got %v, want ErrUnavailableEncoding", err)
	}
}

func TestNegotiator_TransientPassesThrough(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	negotiator := NewNegotiator(client)

	track := &model.TrackDescriptor{TrackID: "42", Title: "Song"}
	_, err := negotiator.Negotiate(context.Background(), track, model.TierLossless)
	if IsUnavailableEncoding(err) {
		t.Fatal("transient fault must stay retryable, not unavailable")
	}
	if kind, ok := KindOf(err); !ok || kind != KindTransient {
		t.Errorf("got %v, want KindTransient", err)
	}
}
