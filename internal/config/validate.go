package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateChannels() error {
	if len(c.Channels) == 0 {
		return errors.New("at least one [[channels]] entry must be configured")
	}
	seen := make(map[string]struct{}, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channels[%d].id must be set", i)
		}
		if strings.ContainsAny(ch.ID, "/\\ ") {
			return fmt.Errorf("channels[%d].id %q must not contain path separators or spaces", i, ch.ID)
		}
		if ch.URL == "" {
			return fmt.Errorf("channels[%d].url must be set", i)
		}
		if _, ok := seen[ch.ID]; ok {
			return fmt.Errorf("duplicate channel id %q", ch.ID)
		}
		seen[ch.ID] = struct{}{}
	}
	return nil
}

func (c *Config) validateIngest() error {
	if _, err := time.LoadLocation(c.Ingest.Timezone); err != nil {
		return fmt.Errorf("ingest.timezone %q is not a valid IANA zone", c.Ingest.Timezone)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxQueueSize < 1 {
		return errors.New("pipeline.max_queue_size must be at least 1")
	}
	if c.Pipeline.WorkerCount < 1 {
		return errors.New("pipeline.worker_count must be at least 1")
	}
	switch c.Pipeline.Device {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("pipeline.device must be cpu or cuda, got %q", c.Pipeline.Device)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
		return errors.New("storage credentials are required when storage.enabled is true; set storage.access_key_id/secret_access_key or the TVSCRIBE_S3_* env vars")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.SweepHour < 0 || c.Retention.SweepHour > 23 {
		return errors.New("retention.sweep_hour must be between 0 and 23")
	}
	if c.Retention.SweepMinute < 0 || c.Retention.SweepMinute > 59 {
		return errors.New("retention.sweep_minute must be between 0 and 59")
	}
	return nil
}
