package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	CacheDir string

	Fetch   FetchConfig
	Engine  EngineConfig
	Render  RenderConfig
	PyPI    PyPIConfig
	Metrics MetricsConfig
}

type FetchConfig struct {
	Origin      string        // Base URL of the storage origin (https:// or s3://)
	Timeout     time.Duration // Per-file HTTP timeout (0 = no timeout)
	Concurrency int           // Worker pool size for prefetch
	VerifySums  bool          // Verify sha256 from the registry when present

	S3 S3Config // Only consulted when Origin uses the s3:// scheme
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

type EngineConfig struct {
	QueryTimeout time.Duration // Applied to each lesson step (0 = none)
}

type RenderConfig struct {
	Interactive bool // Boxed tables when true, plain tab-separated when false
	MaxRows     int  // Rows shown before truncation
	MaxColWidth int  // Column width cap for boxed tables
}

type PyPIConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64 // Requests per second allowed against the metadata service
	Burst   int
}

type MetricsConfig struct {
	Enabled bool
	Dir     string // Snapshot directory; defaults to <cache>/metrics
}

func DefaultConfig() *Config {
	return &Config{
		CacheDir: defaultCacheDir(),
		Fetch: FetchConfig{
			Origin:      "https://storage.googleapis.com/tutorkit-data",
			Timeout:     5 * time.Minute,
			Concurrency: 4,
			VerifySums:  true,
		},
		Engine: EngineConfig{
			QueryTimeout: 30 * time.Second,
		},
		Render: RenderConfig{
			Interactive: true,
			MaxRows:     10,
			MaxColWidth: 40,
		},
		PyPI: PyPIConfig{
			BaseURL: "https://pypi.org/pypi",
			Timeout: 10 * time.Second,
			RPS:     2,
			Burst:   4,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tutorkit"
	}
	return filepath.Join(home, ".tutorkit")
}

// MetricsDir returns the directory metric snapshots are written to.
func (c *Config) MetricsDir() string {
	if c.Metrics.Dir != "" {
		return c.Metrics.Dir
	}
	return filepath.Join(c.CacheDir, "metrics")
}
