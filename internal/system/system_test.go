package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseEncoderList(t *testing.T) {
	out := `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
`
	enc := ParseEncoderList(out)
	if !enc["libx264"] || !enc["libvpx-vp9"] {
		t.Errorf("Expected video encoders to be listed, got %v", enc)
	}
	if enc["aac"] {
		t.Error("Audio encoders must not be listed")
	}
	if enc["="] {
		t.Error("Legend lines must be skipped")
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.json", "b.yaml", "c.txt"}
	for i, f := range files {
		path := filepath.Join(dir, f)
		os.WriteFile(path, []byte("x"), 0644)
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, modTime, modTime)
	}

	latest, err := FindLatest(dir, ".json", ".yaml")
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if filepath.Base(latest) != "b.yaml" {
		t.Errorf("Expected b.yaml, got %s", latest)
	}

	if _, err := FindLatest(dir, ".csv"); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestImagePoolReuse(t *testing.T) {
	pool := NewImagePool()
	rect := image.Rect(0, 0, 8, 4)

	img := pool.Get(rect)
	if img.Rect != rect {
		t.Fatalf("Expected rect %v, got %v", rect, img.Rect)
	}
	pool.Put(img)
	pool.Put(nil)

	other := pool.Get(image.Rect(0, 0, 2, 2))
	if other.Rect.Dx() != 2 {
		t.Errorf("Pool returned wrong size: %v", other.Rect)
	}

	pool.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))

	st := pool.Stats()
	if st.Gets != 2 || st.Puts != 1 {
		t.Errorf("Unexpected counters: %+v", st)
	}
	if st.Allocs < 2 || st.Reused() < 0 {
		t.Errorf("Each new size must allocate: %+v", st)
	}
}
