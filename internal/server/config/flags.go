package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-k", "-session-ttl", "-secure-cookie", "-dev", "-private-drafts", "-u", "-p", "-b", "-g", "-e", "-public-url", "-f", "-l"}

// parseFlags overlays command-line flags.
//
//	-a string        HTTP bind address (e.g. ":8080")
//	-d string        PostgreSQL DSN
//	-s string        session token HMAC secret
//	-k int           bcrypt cost for new hashes
//	-session-ttl     session lifetime (e.g. "168h")
//	-secure-cookie   always mark the session cookie Secure
//	-dev             development mode (relaxed security headers)
//	-private-drafts  hide drafts from anonymous list callers
//	-u / -p string   S3 access key / secret key
//	-b string        S3 bucket
//	-g string        S3 region
//	-e string        S3 base endpoint
//	-public-url      public base URL for uploaded objects
//	-f string        upload folder (object key prefix)
//	-l string        log level
//
// Only the flags listed above are parsed; anything else in args (such as -c)
// is filtered out first.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.DurationVar(&config.SessionTTL, "session-ttl", config.SessionTTL, "session lifetime")
	fs.BoolVar(&config.CookieSecure, "secure-cookie", config.CookieSecure, "always set Secure on the session cookie")
	fs.BoolVar(&config.Development, "dev", config.Development, "development mode")
	fs.BoolVar(&config.PrivateDrafts, "private-drafts", config.PrivateDrafts, "hide drafts from anonymous list callers")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "public-url", config.S3PublicBaseURL, "public base URL of uploaded objects")
	fs.StringVar(&config.UploadFolder, "f", config.UploadFolder, "upload folder")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
