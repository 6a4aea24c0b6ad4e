// Package config handles configuration for the gateway process, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the HearthGate server.
//
// Storage selection is additive: an empty DatabaseDSN keeps the roster and
// audit trail in memory, an empty RedisAddr keeps the decision cache in
// process, and an empty S3Bucket keeps snapshots on the local filesystem.
type Config struct {
	DatabaseDSN string
	RedisAddr   string

	// SecretKey feeds both the crypto gateway key derivation and JWT
	// session-token signing. Do not use the default outside development.
	SecretKey            string
	SessionTokenValidity time.Duration

	CacheCapacity int
	AccessTTL     time.Duration
	ScreenTimeTTL time.Duration
	EncryptTTL    time.Duration
	DecryptTTL    time.Duration

	FlushInterval        time.Duration
	FlushBatchSize       int
	ShutdownFlushTimeout time.Duration

	FilterBaseURL        string
	FilterTimeout        time.Duration
	FilterBlockThreshold float64

	SnapshotDir      string
	SnapshotInterval time.Duration

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.RedisAddr = ""
	c.SecretKey = "dev-household-secret"
	c.SessionTokenValidity = 12 * time.Hour

	c.CacheCapacity = 4096
	c.AccessTTL = 10 * time.Minute
	c.ScreenTimeTTL = 1 * time.Minute
	c.EncryptTTL = 30 * time.Minute
	c.DecryptTTL = 10 * time.Minute

	c.FlushInterval = 30 * time.Second
	c.FlushBatchSize = 100
	c.ShutdownFlushTimeout = 5 * time.Second

	c.FilterBaseURL = ""
	c.FilterTimeout = 2 * time.Second
	c.FilterBlockThreshold = 0.5

	c.SnapshotDir = "./data"
	c.SnapshotInterval = 5 * time.Minute

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
