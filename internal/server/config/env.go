package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
)

// parseEnv overlays PORTFOLIO_* variables. Empty values are treated as
// unset. A value that does not parse as its field's type is an error.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	var errs []error

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", common.ErrorConfiguration, key, v))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not a boolean", common.ErrorConfiguration, key, v))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not a duration (e.g. \"168h\")", common.ErrorConfiguration, key, v))
				return
			}
			*dst = d
		}
	}

	str("PORTFOLIO_HTTP_ADDR", &config.HTTPAddr)
	str("PORTFOLIO_DATABASE_DSN", &config.DatabaseDSN)
	str("PORTFOLIO_SECRET_KEY", &config.SecretKey)
	str("PORTFOLIO_S3_ACCESS_KEY", &config.S3AccessKey)
	str("PORTFOLIO_S3_SECRET_KEY", &config.S3SecretKey)
	str("PORTFOLIO_S3_BUCKET", &config.S3Bucket)
	str("PORTFOLIO_S3_REGION", &config.S3Region)
	str("PORTFOLIO_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("PORTFOLIO_S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)
	str("PORTFOLIO_UPLOAD_FOLDER", &config.UploadFolder)
	str("PORTFOLIO_LOG_LEVEL", &config.LogLevel)

	integer("PORTFOLIO_BCRYPT_COST", &config.BcryptCost)
	duration("PORTFOLIO_SESSION_TTL", &config.SessionTTL)
	boolean("PORTFOLIO_COOKIE_SECURE", &config.CookieSecure)
	boolean("PORTFOLIO_DEVELOPMENT", &config.Development)
	boolean("PORTFOLIO_PRIVATE_DRAFTS", &config.PrivateDrafts)

	return errors.Join(errs...)
}
