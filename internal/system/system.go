package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FFmpegPath is the binary used for probing and encoding.
var FFmpegPath = "ffmpeg"

// FindLatest returns the most recently modified file in dir with one of the
// given extensions.
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(extensions, ", "))
	}

	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

var (
	encodersOnce sync.Once
	encoders     map[string]bool
	encodersErr  error
)

// FFmpegEncoders lists the video encoders reported by `ffmpeg -encoders`.
// The result is cached for the lifetime of the process.
func FFmpegEncoders() (map[string]bool, error) {
	encodersOnce.Do(func() {
		out, err := exec.Command(FFmpegPath, "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			encodersErr = fmt.Errorf("ffmpeg недоступен: %w", err)
			return
		}
		encoders = ParseEncoderList(string(out))
	})
	return encoders, encodersErr
}

// ParseEncoderList extracts video encoder names from `ffmpeg -encoders` output.
// Lines look like " V....D libx264              libx264 H.264 ...".
func ParseEncoderList(out string) map[string]bool {
	result := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 || fields[0][0] != 'V' || fields[1] == "=" {
			continue
		}
		result[fields[1]] = true
	}
	return result
}
