package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/flagx"
)

// serverFlags are the short flags parseFlags owns; everything else on the
// command line is ignored here.
var serverFlags = []string{"-a", "-w", "-d", "-s", "-t", "-r", "-f", "-k", "-x", "-u", "-p", "-b", "-g", "-e", "-l"}

// parseFlags overlays command-line flags on config.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-w string   webhook HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-f string   form provider endpoint
//	-k string   form provider API key
//	-x string   webhook shared secret
//	-u/-p       S3 root user / password
//	-b/-g/-e    S3 bucket / region / base endpoint
//	-l string   log level (debug, info, warn, error)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("feedbox", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrWebhook, "w", config.EndpointAddrWebhook, "webhook address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.FormProviderEndpoint, "f", config.FormProviderEndpoint, "form provider endpoint")
	fs.StringVar(&config.FormProviderAPIKey, "k", config.FormProviderAPIKey, "form provider API key")
	fs.StringVar(&config.WebhookSecret, "x", config.WebhookSecret, "webhook shared secret")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// Only touch durations that were given so sub-minute values from other
	// layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
		}
	})
	return nil
}
