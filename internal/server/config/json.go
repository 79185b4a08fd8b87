package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/timex"
)

// JSONConfig mirrors Config for decoding. Pointer fields distinguish "absent"
// from "zero" so a partial file only overrides what it names.
type JSONConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	SecretKey       *string         `json:"secret_key"`
	BcryptCost      *int            `json:"bcrypt_cost"`
	SessionTTL      *timex.Duration `json:"session_ttl"`
	CookieSecure    *bool           `json:"cookie_secure"`
	Development     *bool           `json:"development"`
	PrivateDrafts   *bool           `json:"private_drafts"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL *string         `json:"s3_public_base_url"`
	UploadFolder    *string         `json:"upload_folder"`
	LogLevel        *string         `json:"log_level"`
}

// parseJSON overlays values from the file named by -c / -config. No flag means
// nothing to load.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.Development != nil {
		config.Development = *c.Development
	}
	if c.PrivateDrafts != nil {
		config.PrivateDrafts = *c.PrivateDrafts
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&config.UploadFolder, c.UploadFolder)
	setString(&config.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
