package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/feedbox/internal/flagx"
	"github.com/dmitrijs2005/feedbox/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "90s" strings and integer nanoseconds. Only fields present in the file
// override the current values.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	EndpointAddrWebhook          *string         `json:"endpoint_addr_webhook"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	FormProviderEndpoint         *string         `json:"form_provider_endpoint"`
	FormProviderAPIKey           *string         `json:"form_provider_api_key"`
	FormProviderTimeout          *timex.Duration `json:"form_provider_timeout"`
	FormURLTemplate              *string         `json:"form_url_template"`
	QRCodeURLTemplate            *string         `json:"qr_code_url_template"`
	WebhookSecret                *string         `json:"webhook_secret"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	ExportURLValidity            *timex.Duration `json:"export_url_validity"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJSON loads the file named by -c/-config in args, if any, and overlays
// it on config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFromArgs(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrWebhook, c.EndpointAddrWebhook)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.FormProviderEndpoint, c.FormProviderEndpoint)
	setString(&config.FormProviderAPIKey, c.FormProviderAPIKey)
	setDuration(&config.FormProviderTimeout, c.FormProviderTimeout)
	setString(&config.FormURLTemplate, c.FormURLTemplate)
	setString(&config.QRCodeURLTemplate, c.QRCodeURLTemplate)
	setString(&config.WebhookSecret, c.WebhookSecret)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.ExportURLValidity, c.ExportURLValidity)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
