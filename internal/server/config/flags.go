package config

import (
	"flag"
	"os"
	"time"

	"github.com/hearthgate/hearthgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN (empty = in-memory stores)
//	-r string   redis address for the shared decision cache
//	-s string   process secret (crypto key derivation + JWT signing)
//	-f string   remote content-filter base URL
//	-i int      audit flush interval, seconds
//	-n int      audit flush batch size
//	-b string   S3 bucket for audit batches and snapshots
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-u string   S3 root user
//	-p string   S3 root password
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-s", "-f", "-i", "-n", "-b", "-g", "-e", "-u", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.FilterBaseURL, "f", config.FilterBaseURL, "remote filter base URL")

	flushInterval := fs.Int("i", int(config.FlushInterval.Seconds()), "audit flush interval (in seconds)")
	fs.IntVar(&config.FlushBatchSize, "n", config.FlushBatchSize, "audit flush batch size")

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.FlushInterval = time.Duration(*flushInterval) * time.Second
}
