package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hearthgate/hearthgate/internal/flagx"
	"github.com/hearthgate/hearthgate/internal/timex"
)

// jsonConfig is the DTO for reading JSON configuration files. Interval
// fields use timex.Duration, which accepts both "30s" strings and integer
// nanoseconds. After unmarshalling, set fields are copied into the runtime
// Config; absent fields keep their current values.
type jsonConfig struct {
	DatabaseDSN          *string         `json:"database_dsn"`
	RedisAddr            *string         `json:"redis_addr"`
	SecretKey            *string         `json:"secret_key"`
	SessionTokenValidity *timex.Duration `json:"session_token_validity"`

	CacheCapacity *int            `json:"cache_capacity"`
	AccessTTL     *timex.Duration `json:"access_ttl"`
	ScreenTimeTTL *timex.Duration `json:"screen_time_ttl"`
	EncryptTTL    *timex.Duration `json:"encrypt_ttl"`
	DecryptTTL    *timex.Duration `json:"decrypt_ttl"`

	FlushInterval        *timex.Duration `json:"flush_interval"`
	FlushBatchSize       *int            `json:"flush_batch_size"`
	ShutdownFlushTimeout *timex.Duration `json:"shutdown_flush_timeout"`

	FilterBaseURL        *string         `json:"filter_base_url"`
	FilterTimeout        *timex.Duration `json:"filter_timeout"`
	FilterBlockThreshold *float64        `json:"filter_block_threshold"`

	SnapshotDir      *string         `json:"snapshot_dir"`
	SnapshotInterval *timex.Duration `json:"snapshot_interval"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
}

// parseJSON loads configuration values from the JSON file named by the -c
// or -config flags. No flag means no file is loaded. An unreadable or
// invalid file panics: a half-applied config is worse than a crash at boot.
func parseJSON(config *Config) {
	path := flagx.JSONConfigFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionTokenValidity, c.SessionTokenValidity)

	setInt(&config.CacheCapacity, c.CacheCapacity)
	setDuration(&config.AccessTTL, c.AccessTTL)
	setDuration(&config.ScreenTimeTTL, c.ScreenTimeTTL)
	setDuration(&config.EncryptTTL, c.EncryptTTL)
	setDuration(&config.DecryptTTL, c.DecryptTTL)

	setDuration(&config.FlushInterval, c.FlushInterval)
	setInt(&config.FlushBatchSize, c.FlushBatchSize)
	setDuration(&config.ShutdownFlushTimeout, c.ShutdownFlushTimeout)

	setString(&config.FilterBaseURL, c.FilterBaseURL)
	setDuration(&config.FilterTimeout, c.FilterTimeout)
	if c.FilterBlockThreshold != nil {
		config.FilterBlockThreshold = *c.FilterBlockThreshold
	}

	setString(&config.SnapshotDir, c.SnapshotDir)
	setDuration(&config.SnapshotInterval, c.SnapshotInterval)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
