package config

import "time"

// Config holds the settings of one CLI run.
type Config struct {
	DataPath     string
	StylePath    string
	OutputVideo  string
	FramesDir    string
	Codecs       []string
	SampleEvery  int
	SampleWidth  int
	TickInterval time.Duration
	StopTimeout  time.Duration
	ShowStats    bool
	BuildVersion string
}

// DefaultSampleEvery is the diagnostic capture cadence: frame 1, then every 10th.
const DefaultSampleEvery = 10

func (c *Config) Defaults() {
	if c.SampleEvery <= 0 {
		c.SampleEvery = DefaultSampleEvery
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 30 * time.Second
	}
	if c.BuildVersion == "" {
		c.BuildVersion = "dev"
	}
}
