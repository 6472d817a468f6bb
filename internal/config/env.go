package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/swapcloset/swapcloset/internal/flagx"
)

// parseEnv overlays configuration from environment variables. When an env
// file is named via -env/-envfile (or a ./.env exists), it is loaded first;
// a missing file is not an error, real environment always wins over file
// values (godotenv never overrides existing variables).
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		_ = godotenv.Load(path)
	} else {
		_ = godotenv.Load()
	}

	setString := func(key string, target *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}

	setString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setString("S3_ACCESS_KEY", &config.S3AccessKey)
	setString("S3_SECRET_KEY", &config.S3SecretKey)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("UPLOAD_FOLDER", &config.UploadFolder)

	if v, ok := os.LookupEnv("MAX_UPLOAD_SIZE_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadSizeBytes = n
		}
	}
	if v, ok := os.LookupEnv("SESSION_DELAY_WARN_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.SessionDelayWarn = time.Duration(n) * time.Second
		}
	}
}
