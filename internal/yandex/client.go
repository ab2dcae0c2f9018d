package yandex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex/dto"
)

const (
	baseURL       = "https://api.music.yandex.net"
	signingSecret = "kzqU4XhfCaY6B6JTHODeq5"
	userAgent     = "YandexMusicDesktopAppWindows/5.20.2"
	clientHeader  = "X-Yandex-Music-Client"

	// collectionPageSize is the page size requested from paginated
	// collection endpoints.
	collectionPageSize = 100
)

// Client is the authenticated request/response layer. It owns the
// credential, attaches it to every call, and maps transport and HTTP
// status outcomes to the APIError taxonomy. It holds no other state
// between calls.
//
// Example usage:
//
//	client, err := yandex.NewClient(ctx, token)
//	if err != nil {
//	    // yandex.KindOf(err) == yandex.KindUnauthorized on a bad token
//	}
//	album, err := client.AlbumWithTracks(ctx, "12345")
type Client struct {
	httpClient *http.Client
	base       string
	auth       string

	// login is the credential owner's login, captured at sign-in and
	// used to decide favourites ownership.
	login string

	now func() time.Time
}

// NewClient builds a client around the opaque OAuth token and verifies
// it against the account endpoint. A rejected credential surfaces as
// KindUnauthorized; an account without an active subscription returns
// ErrPlusRequired.
func NewClient(ctx context.Context, token string) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		base:       baseURL,
		auth:       "OAuth " + token,
		now:        time.Now,
	}

	account, err := c.accountAbout(ctx)
	if err != nil {
		return nil, err
	}
	if !account.HasPlus {
		return nil, ErrPlusRequired
	}
	c.login = account.Login

	return c, nil
}

// Login returns the credential owner's login.
func (c *Client) Login() string {
	return c.login
}

func (c *Client) accountAbout(ctx context.Context) (*dto.AccountResult, error) {
	var out dto.Account
	if err := c.getJSON(ctx, "/account/about", nil, false, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// AlbumWithTracks fetches album metadata including the full track
// listing.
func (c *Client) AlbumWithTracks(ctx context.Context, albumID string) (*dto.AlbumResult, error) {
	var out dto.AlbumMeta
	path := fmt.Sprintf("/albums/%s/with-tracks", url.PathEscape(albumID))
	if err := c.getJSON(ctx, path, nil, false, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// ArtistDirectAlbums fetches one page of an artist's albums, newest
// first per the API's ordering.
func (c *Client) ArtistDirectAlbums(ctx context.Context, artistID string, page int) (*dto.ArtistAlbumsResult, error) {
	var out dto.ArtistAlbums
	path := fmt.Sprintf("/artists/%s/direct-albums", url.PathEscape(artistID))
	params := url.Values{
		"page":      {strconv.Itoa(page)},
		"page-size": {strconv.Itoa(collectionPageSize)},
	}
	if err := c.getJSON(ctx, path, params, false, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// PlaylistPage fetches one page of a user playlist. Private playlists
// not owned by the credential surface as KindNotFound.
func (c *Client) PlaylistPage(ctx context.Context, owner, kind string, page int) (*dto.PlaylistResult, error) {
	var out dto.PlaylistMeta
	path := fmt.Sprintf("/users/%s/playlists/%s", url.PathEscape(owner), url.PathEscape(kind))
	params := url.Values{
		"page":      {strconv.Itoa(page)},
		"page-size": {strconv.Itoa(collectionPageSize)},
	}
	if err := c.getJSON(ctx, path, params, false, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// LikesPage fetches one page of a user's liked tracks.
func (c *Client) LikesPage(ctx context.Context, owner string, page int) (*dto.LikesResult, error) {
	var out dto.Likes
	path := fmt.Sprintf("/users/%s/likes/tracks", url.PathEscape(owner))
	params := url.Values{
		"page":      {strconv.Itoa(page)},
		"page-size": {strconv.Itoa(collectionPageSize)},
	}
	if err := c.getJSON(ctx, path, params, false, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// FileInfo negotiates a stream for one track at one quality string.
// The request is HMAC-signed the way the desktop client signs it; the
// returned URL is short-lived, so callers must download immediately.
func (c *Client) FileInfo(ctx context.Context, trackID, quality string) (*dto.DownloadInfo, error) {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	params := url.Values{
		"ts":         {ts},
		"trackId":    {trackID},
		"quality":    {quality},
		"codecs":     {"flac,aac,he-aac,mp3"},
		"transports": {"raw"},
		"sign":       {fileInfoSignature(ts, trackID, quality)},
	}

	var out dto.FileInfo
	if err := c.getJSON(ctx, "/get-file-info", params, true, &out); err != nil {
		return nil, err
	}
	return &out.Result.DownloadInfo, nil
}

// LyricsMeta fetches the timed-lyrics download descriptor for a track.
func (c *Client) LyricsMeta(ctx context.Context, trackID string) (*dto.LyricsResult, error) {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	params := url.Values{
		"timeStamp": {ts},
		"trackId":   {trackID},
		"format":    {"LRC"},
		"sign":      {lyricsSignature(ts, trackID)},
	}

	var out dto.LyricsMeta
	path := fmt.Sprintf("/tracks/%s/lyrics", url.PathEscape(trackID))
	if err := c.getJSON(ctx, path, params, true, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// FetchStream opens a streaming download of an absolute URL (signed
// stream URL, cover, lyrics file). The caller owns the returned body.
// Audio fetches set an open byte range the way the desktop client does.
func (c *Client) FetchStream(ctx context.Context, fullURL string, withRange bool) (io.ReadCloser, int64, error) {
	const op = "fetch stream"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	if withRange {
		req.Header.Set("Range", "bytes=0-")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, 0, statusError(op, resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}

// FetchBytes downloads a small file (cover art, lyrics) into memory.
func (c *Client) FetchBytes(ctx context.Context, fullURL string) ([]byte, error) {
	body, _, err := c.FetchStream(ctx, fullURL, false)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// CoverURL expands a cover URI template to a concrete image URL.
// The service serves covers through a size placeholder; callers pick
// either the fixed 1000x1000 rendition or the original upload.
func CoverURL(coverURITemplate string, original bool) string {
	size := "/1000x1000"
	if original {
		size = "/orig"
	}
	return "https://" + strings.Replace(coverURITemplate, "/%%", size, 1)
}

// getJSON performs an authenticated GET against the API and decodes the
// enveloped JSON payload, classifying failures into the error taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, signedCall bool, out any) error {
	op := "GET " + path

	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", c.auth)
	if signedCall {
		req.Header.Set(clientHeader, userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindMalformed, Op: op, Err: err}
	}
	return nil
}

// statusError maps an HTTP status to the error taxonomy.
func statusError(op string, status int) error {
	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden, status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 500:
		kind = KindTransient
	default:
		kind = KindMalformed
	}
	return &APIError{Kind: kind, Status: status, Op: op}
}

// fileInfoSignature computes the HMAC-SHA256 signature the file-info
// endpoint validates. The message is ts+trackID+quality plus the fixed
// codec/transport suffix, and the final base64 character is dropped.
func fileInfoSignature(ts, trackID, quality string) string {
	msg := ts + trackID + quality + "flacaache-aacmp3raw"
	sig := hmacBase64(msg)
	return sig[:len(sig)-1]
}

// lyricsSignature computes the signature for the lyrics endpoint;
// its message is trackID+ts with no suffix and nothing dropped.
func lyricsSignature(ts, trackID string) string {
	return hmacBase64(trackID + ts)
}

func hmacBase64(msg string) string {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// IsFatal reports whether an error should abort the whole run rather
// than fail a single reference or track.
func IsFatal(err error) bool {
	if errors.Is(err, ErrPlusRequired) {
		return true
	}
	kind, ok := KindOf(err)
	return ok && kind == KindUnauthorized
}
