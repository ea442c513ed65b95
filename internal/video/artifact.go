package video

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is an immutable encoded recording.
type Artifact struct {
	data      []byte
	MimeType  string
	Extension string
	Codec     string
	Frames    int
}

func newArtifact(data []byte, c Codec, frames int) *Artifact {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Artifact{data: buf, MimeType: c.MimeType, Extension: c.Extension, Codec: c.Name, Frames: frames}
}

func (a *Artifact) Size() int {
	return len(a.data)
}

// Bytes returns a copy of the encoded data.
func (a *Artifact) Bytes() []byte {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// PreviewURL is a self-contained data: URL of the recording.
func (a *Artifact) PreviewURL() string {
	return "data:" + a.MimeType + ";base64," + base64.StdEncoding.EncodeToString(a.data)
}

// Download writes the recording to dir/name with the codec's extension.
func (a *Artifact) Download(dir, name string) (string, error) {
	name = strings.TrimSuffix(name, filepath.Ext(name)) + a.Extension
	path := filepath.Join(dir, name)
	return path, a.WriteFile(path)
}

func (a *Artifact) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, a.data, 0644)
}
