package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRE  = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	rawVideoRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	channelIDRE   = regexp.MustCompile(`youtube\.com/channel/(UC[a-zA-Z0-9_-]{22})`)
	handleRE      = regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9_.-]+)`)
	userRE        = regexp.MustCompile(`youtube\.com/user/([a-zA-Z0-9_-]+)`)
	customRE      = regexp.MustCompile(`youtube\.com/c/([a-zA-Z0-9_-]+)`)
	legacyRE      = regexp.MustCompile(`youtube\.com/([a-zA-Z0-9_-]+)/?(?:[?#].*)?$`)
	rawChannelRE  = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
	rawHandleRE   = regexp.MustCompile(`^@([a-zA-Z0-9_.-]+)$`)
	playlistRE    = regexp.MustCompile(`youtube\.com/(?:playlist|watch)\?(?:.*&)?list=([a-zA-Z0-9_-]+)`)
	rawPlaylistRE = regexp.MustCompile(`^(?:PL|UU|LL|FL|RD|OL)[a-zA-Z0-9_-]{10,}$`)
)

// Paths under youtube.com that are never a legacy channel name.
var reservedPaths = map[string]bool{
	"watch": true, "playlist": true, "embed": true, "shorts": true, "live": true,
	"results": true, "feed": true, "channel": true, "user": true, "c": true, "v": true,
}

var youtubeHosts = map[string]bool{
	"youtube.com": true, "www.youtube.com": true, "m.youtube.com": true,
	"music.youtube.com": true, "youtu.be": true,
}

// ExtractVideoID pulls the 11-char video id from a URL or returns a bare id unchanged.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if m := videoIDRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	if rawVideoRE.MatchString(s) {
		return s
	}
	return ""
}

// ChannelRefKind says how a channel was referenced.
type ChannelRefKind string

const (
	ChannelByID       ChannelRefKind = "id"
	ChannelByHandle   ChannelRefKind = "handle"
	ChannelByUsername ChannelRefKind = "username"
	ChannelByCustom   ChannelRefKind = "custom"
)

// ChannelRef is a channel reference that may still need resolving to an id.
type ChannelRef struct {
	Kind  ChannelRefKind `json:"kind"`
	Value string         `json:"value"`
}

// URL returns the canonical page for the reference.
func (r ChannelRef) URL() string {
	switch r.Kind {
	case ChannelByID:
		return "https://www.youtube.com/channel/" + r.Value
	case ChannelByHandle:
		return "https://www.youtube.com/@" + r.Value
	case ChannelByUsername:
		return "https://www.youtube.com/user/" + r.Value
	default:
		return "https://www.youtube.com/c/" + r.Value
	}
}

// ExtractChannelRef recognises /channel/UC…, /@handle, /user/, /c/ and legacy
// youtube.com/<name> URLs, plus bare UC… ids and @handles.
func ExtractChannelRef(s string) (ChannelRef, bool) {
	s = strings.TrimSpace(s)
	switch {
	case channelIDRE.MatchString(s):
		return ChannelRef{ChannelByID, channelIDRE.FindStringSubmatch(s)[1]}, true
	case handleRE.MatchString(s):
		return ChannelRef{ChannelByHandle, handleRE.FindStringSubmatch(s)[1]}, true
	case userRE.MatchString(s):
		return ChannelRef{ChannelByUsername, userRE.FindStringSubmatch(s)[1]}, true
	case customRE.MatchString(s):
		return ChannelRef{ChannelByCustom, customRE.FindStringSubmatch(s)[1]}, true
	case rawChannelRE.MatchString(s):
		return ChannelRef{ChannelByID, s}, true
	case rawHandleRE.MatchString(s):
		return ChannelRef{ChannelByHandle, rawHandleRE.FindStringSubmatch(s)[1]}, true
	}
	if m := legacyRE.FindStringSubmatch(s); len(m) == 2 && !reservedPaths[m[1]] {
		return ChannelRef{ChannelByCustom, m[1]}, true
	}
	return ChannelRef{}, false
}

// ExtractPlaylistID pulls the list= parameter from a URL or accepts a bare playlist id.
func ExtractPlaylistID(s string) string {
	s = strings.TrimSpace(s)
	if m := playlistRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	if rawPlaylistRE.MatchString(s) {
		return s
	}
	return ""
}

// URLInfo is everything recognisable in one URL. Type names the first match in
// video, channel, playlist order.
type URLInfo struct {
	Type       string      `json:"url_type,omitempty"`
	VideoID    string      `json:"video_id,omitempty"`
	Channel    *ChannelRef `json:"channel,omitempty"`
	PlaylistID string      `json:"playlist_id,omitempty"`
}

// ParseURL extracts every id it can find.
func ParseURL(s string) URLInfo {
	var info URLInfo
	if id := ExtractVideoID(s); id != "" {
		info.VideoID = id
		info.Type = "video"
	}
	if ref, ok := ExtractChannelRef(s); ok && info.VideoID == "" {
		info.Channel = &ref
		if info.Type == "" {
			info.Type = "channel"
		}
	}
	if id := ExtractPlaylistID(s); id != "" {
		info.PlaylistID = id
		if info.Type == "" {
			info.Type = "playlist"
		}
	}
	return info
}

// NormalizeURL rewrites any recognised link to its canonical form.
func NormalizeURL(s string) (string, error) {
	info := ParseURL(s)
	switch {
	case info.VideoID != "":
		return "https://www.youtube.com/watch?v=" + info.VideoID, nil
	case info.Channel != nil:
		return info.Channel.URL(), nil
	case info.PlaylistID != "":
		return "https://www.youtube.com/playlist?list=" + info.PlaylistID, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidURL, s)
}

// IsYouTubeURL reports whether s is an absolute URL on a YouTube host.
func IsYouTubeURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Hostname())]
}
