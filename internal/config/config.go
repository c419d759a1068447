package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Channel describes one live source to ingest. The core never mutates it.
type Channel struct {
	ID        string            `toml:"id"`
	URL       string            `toml:"url"`
	MediaType string            `toml:"media_type"`
	Headers   map[string]string `toml:"headers"`
}

// Paths contains base directory configuration.
type Paths struct {
	ArchiveDir string `toml:"archive_dir"`
	AudioDir   string `toml:"audio_dir"`
	LogDir     string `toml:"log_dir"`
	DataDir    string `toml:"data_dir"`
}

// Ingest contains stream segmentation settings.
type Ingest struct {
	SegmentSeconds int    `toml:"segment_seconds"`
	Timezone       string `toml:"timezone"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFmpegLogLevel string `toml:"ffmpeg_log_level"`
}

// Pipeline contains queue and worker settings.
type Pipeline struct {
	MaxQueueSize    int    `toml:"max_queue_size"`
	WorkerCount     int    `toml:"worker_count"`
	Device          string `toml:"device"`
	MinFreeMemoryMB int    `toml:"min_free_memory_mb"`
}

// Transcriber contains speech recognition engine settings.
type Transcriber struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage contains durable object storage settings. Replication is disabled
// unless enabled explicitly.
type Storage struct {
	Enabled                bool   `toml:"enabled"`
	Endpoint               string `toml:"endpoint"`
	Region                 string `toml:"region"`
	Bucket                 string `toml:"bucket"`
	Prefix                 string `toml:"prefix"`
	AccessKeyID            string `toml:"access_key_id"`
	SecretAccessKey        string `toml:"secret_access_key"`
	PresignExpirySeconds   int    `toml:"presign_expiry_seconds"`
	DeleteLocalAfterUpload bool   `toml:"delete_local_after_upload"`
	DeleteRetries          int    `toml:"delete_retries"`
	DeleteDelayMS          int    `toml:"delete_delay_ms"`
	UploadGraceMS          int    `toml:"upload_grace_ms"`
}

// Retention contains transcript retention and disk pressure settings.
type Retention struct {
	Days                 int `toml:"days"`
	SweepHour            int `toml:"sweep_hour"`
	SweepMinute          int `toml:"sweep_minute"`
	ValveIntervalMinutes int `toml:"valve_interval_minutes"`
	LocalMaxAgeMinutes   int `toml:"local_max_age_minutes"`
	AudioMaxAgeMinutes   int `toml:"audio_max_age_minutes"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration shared by the daemon and CLI.
type Config struct {
	Channels    []Channel   `toml:"channels"`
	Paths       Paths       `toml:"paths"`
	Ingest      Ingest      `toml:"ingest"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Transcriber Transcriber `toml:"transcriber"`
	Storage     Storage     `toml:"storage"`
	Retention   Retention   `toml:"retention"`
	Logging     Logging     `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the expanded default configuration location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tvscribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tvscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArchiveDir, c.Paths.AudioDir, c.Paths.LogDir, c.Paths.DataDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ArchiveDirFor returns the raw segment directory for a channel.
func (c *Config) ArchiveDirFor(channelID string) string {
	return filepath.Join(c.Paths.ArchiveDir, channelID)
}

// AudioDirFor returns the analysis audio directory for a channel.
func (c *Config) AudioDirFor(channelID string) string {
	return filepath.Join(c.Paths.AudioDir, channelID)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
