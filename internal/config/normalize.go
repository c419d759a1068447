package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeChannels()
	c.normalizeIngest()
	c.normalizePipeline()
	c.normalizeTranscriber()
	c.normalizeStorage()
	c.normalizeRetention()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeChannels() {
	for i := range c.Channels {
		c.Channels[i].ID = strings.TrimSpace(c.Channels[i].ID)
		c.Channels[i].URL = strings.TrimSpace(c.Channels[i].URL)
		if strings.TrimSpace(c.Channels[i].MediaType) == "" {
			c.Channels[i].MediaType = "video"
		}
	}
}

func (c *Config) normalizeIngest() {
	if c.Ingest.SegmentSeconds <= 0 {
		c.Ingest.SegmentSeconds = defaultSegmentSeconds
	}
	c.Ingest.Timezone = strings.TrimSpace(c.Ingest.Timezone)
	if c.Ingest.Timezone == "" {
		c.Ingest.Timezone = defaultTimezone
	}
	if strings.TrimSpace(c.Ingest.FFmpegBinary) == "" {
		c.Ingest.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Ingest.FFmpegLogLevel) == "" {
		c.Ingest.FFmpegLogLevel = defaultFFmpegLogLevel
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.MaxQueueSize <= 0 {
		c.Pipeline.MaxQueueSize = defaultMaxQueueSize
	}
	if c.Pipeline.WorkerCount <= 0 {
		c.Pipeline.WorkerCount = defaultWorkerCount
	}
	c.Pipeline.Device = strings.ToLower(strings.TrimSpace(c.Pipeline.Device))
	if c.Pipeline.Device == "" {
		c.Pipeline.Device = defaultDevice
	}
	if c.Pipeline.MinFreeMemoryMB < 0 {
		c.Pipeline.MinFreeMemoryMB = 0
	}
}

func (c *Config) normalizeTranscriber() {
	if strings.TrimSpace(c.Transcriber.Binary) == "" {
		c.Transcriber.Binary = defaultTranscriberBinary
	}
	if strings.TrimSpace(c.Transcriber.Model) == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	c.Transcriber.Language = strings.TrimSpace(c.Transcriber.Language)
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
}

func (c *Config) normalizeStorage() {
	if c.Storage.AccessKeyID == "" {
		if value, ok := os.LookupEnv("TVSCRIBE_S3_ACCESS_KEY_ID"); ok {
			c.Storage.AccessKeyID = strings.TrimSpace(value)
		}
	}
	if c.Storage.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("TVSCRIBE_S3_SECRET_ACCESS_KEY"); ok {
			c.Storage.SecretAccessKey = strings.TrimSpace(value)
		}
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	if c.Storage.PresignExpirySeconds <= 0 {
		c.Storage.PresignExpirySeconds = defaultPresignExpirySeconds
	}
	if c.Storage.DeleteRetries <= 0 {
		c.Storage.DeleteRetries = defaultDeleteRetries
	}
	if c.Storage.DeleteDelayMS <= 0 {
		c.Storage.DeleteDelayMS = defaultDeleteDelayMS
	}
	if c.Storage.UploadGraceMS < 0 {
		c.Storage.UploadGraceMS = defaultUploadGraceMS
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.Days <= 0 {
		c.Retention.Days = defaultRetentionDays
	}
	if c.Retention.ValveIntervalMinutes <= 0 {
		c.Retention.ValveIntervalMinutes = defaultValveIntervalMinutes
	}
	if c.Retention.LocalMaxAgeMinutes <= 0 {
		c.Retention.LocalMaxAgeMinutes = defaultLocalMaxAgeMinutes
	}
	if c.Retention.AudioMaxAgeMinutes <= 0 {
		c.Retention.AudioMaxAgeMinutes = defaultAudioMaxAgeMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

// Location resolves the configured timezone. Invalid names fall back to UTC
// rather than failing startup; filename timestamps then read as UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ingest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
