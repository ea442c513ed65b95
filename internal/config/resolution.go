package config

import (
	"fmt"
	"sort"
	"strings"
)

type Resolution string

const (
	Res360p  Resolution = "360p"
	Res480p  Resolution = "480p"
	Res720p  Resolution = "720p"
	Res1080p Resolution = "1080p"
	ResShort Resolution = "shorts"
	ResSqr   Resolution = "square"
)

var resolutions = map[Resolution][2]int{
	Res360p:  {640, 360},
	Res480p:  {854, 480},
	Res720p:  {1280, 720},
	Res1080p: {1920, 1080},
	ResShort: {720, 1280},
	ResSqr:   {1080, 1080},
}

// Size maps the resolution name to pixel dimensions.
func (r Resolution) Size() (int, int, error) {
	wh, ok := resolutions[Resolution(strings.ToLower(string(r)))]
	if !ok {
		return 0, 0, fmt.Errorf("unknown resolution %q (available: %s)", r, strings.Join(ResolutionNames(), ", "))
	}
	return wh[0], wh[1], nil
}

func ResolutionNames() []string {
	names := make([]string, 0, len(resolutions))
	for r := range resolutions {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return names
}
