package video

import (
	"fmt"
	"strings"

	"github.com/ivlev/chart2video/internal/errs"
)

// Codec is one entry of the encoder preference list.
type Codec struct {
	Name      string
	MimeType  string
	Extension string
	// Container is the ffmpeg muxer; empty for built-in codecs.
	Container string
	// FFmpegEncoders are candidate ffmpeg encoders, best first.
	FFmpegEncoders []string
}

var (
	VP9 = Codec{
		Name: "vp9", MimeType: "video/webm", Extension: ".webm",
		Container: "webm", FFmpegEncoders: []string{"libvpx-vp9"},
	}
	VP8 = Codec{
		Name: "vp8", MimeType: "video/webm", Extension: ".webm",
		Container: "webm", FFmpegEncoders: []string{"libvpx"},
	}
	H264 = Codec{
		Name: "h264", MimeType: "video/mp4", Extension: ".mp4",
		Container: "mp4", FFmpegEncoders: []string{"h264_videotoolbox", "h264_nvenc", "libx264"},
	}
	// MJPEG is encoded in-process and is always available.
	MJPEG = Codec{
		Name: "mjpeg", MimeType: "video/x-motion-jpeg", Extension: ".mjpeg",
	}
)

// DefaultPreferences lists codecs best first; MJPEG is the fallback.
var DefaultPreferences = []Codec{VP9, VP8, H264, MJPEG}

var knownCodecs = map[string]Codec{
	VP9.Name:   VP9,
	VP8.Name:   VP8,
	H264.Name:  H264,
	MJPEG.Name: MJPEG,
}

// ParseCodecs turns codec names into a preference list. An empty list yields
// DefaultPreferences.
func ParseCodecs(names []string) ([]Codec, error) {
	var out []Codec
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		c, ok := knownCodecs[n]
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", n)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return DefaultPreferences, nil
	}
	return out, nil
}

// Negotiate returns the first codec of prefs the encoder can produce.
func Negotiate(enc Encoder, prefs []Codec) (Codec, error) {
	names := make([]string, 0, len(prefs))
	for _, c := range prefs {
		if enc.Available(c) {
			return c, nil
		}
		names = append(names, c.Name)
	}
	return Codec{}, errs.New(errs.UnsupportedEncoder, "no supported codec among [%s]", strings.Join(names, ", "))
}
