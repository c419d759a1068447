package config

const (
	defaultArchiveDir           = "~/.local/share/tvscribe/archive"
	defaultAudioDir             = "~/.local/share/tvscribe/audio"
	defaultLogDir               = "~/.local/share/tvscribe/logs"
	defaultDataDir              = "~/.local/share/tvscribe/data"
	defaultSegmentSeconds       = 8
	defaultTimezone             = "UTC"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFmpegLogLevel       = "info"
	defaultMaxQueueSize         = 16
	defaultWorkerCount          = 2
	defaultDevice               = "cuda"
	defaultMinFreeMemoryMB      = 1024
	defaultTranscriberBinary    = "whisper-ctranslate2"
	defaultTranscriberModel     = "large-v3"
	defaultTranscriberLanguage  = "az"
	defaultTranscriberTimeout   = 300
	defaultPresignExpirySeconds = 3600
	defaultDeleteRetries        = 15
	defaultDeleteDelayMS        = 200
	defaultUploadGraceMS        = 250
	defaultRetentionDays        = 30
	defaultSweepHour            = 3
	defaultSweepMinute          = 0
	defaultValveIntervalMinutes = 5
	defaultLocalMaxAgeMinutes   = 120
	defaultAudioMaxAgeMinutes   = 3
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir: defaultArchiveDir,
			AudioDir:   defaultAudioDir,
			LogDir:     defaultLogDir,
			DataDir:    defaultDataDir,
		},
		Ingest: Ingest{
			SegmentSeconds: defaultSegmentSeconds,
			Timezone:       defaultTimezone,
			FFmpegBinary:   defaultFFmpegBinary,
			FFmpegLogLevel: defaultFFmpegLogLevel,
		},
		Pipeline: Pipeline{
			MaxQueueSize:    defaultMaxQueueSize,
			WorkerCount:     defaultWorkerCount,
			Device:          defaultDevice,
			MinFreeMemoryMB: defaultMinFreeMemoryMB,
		},
		Transcriber: Transcriber{
			Binary:         defaultTranscriberBinary,
			Model:          defaultTranscriberModel,
			Language:       defaultTranscriberLanguage,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Storage: Storage{
			PresignExpirySeconds:   defaultPresignExpirySeconds,
			DeleteLocalAfterUpload: true,
			DeleteRetries:          defaultDeleteRetries,
			DeleteDelayMS:          defaultDeleteDelayMS,
			UploadGraceMS:          defaultUploadGraceMS,
		},
		Retention: Retention{
			Days:                 defaultRetentionDays,
			SweepHour:            defaultSweepHour,
			SweepMinute:          defaultSweepMinute,
			ValveIntervalMinutes: defaultValveIntervalMinutes,
			LocalMaxAgeMinutes:   defaultLocalMaxAgeMinutes,
			AudioMaxAgeMinutes:   defaultAudioMaxAgeMinutes,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
