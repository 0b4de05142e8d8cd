package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/dmitrijs2005/knaughts/internal/flagx"
	"github.com/dmitrijs2005/knaughts/internal/timex"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with KNAUGHTS_* variables.
//
// The dotenv file named by -e/-env is loaded first and must exist; without
// the flag, ./.env is loaded if present. godotenv never overrides variables
// that are already set. Panics on unreadable files or malformed numbers.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.BaseURL, "KNAUGHTS_DB_BASE_URL")
	setString(&cfg.Identity, "KNAUGHTS_DB_IDENTITY")
	setString(&cfg.Password, "KNAUGHTS_DB_PASSWORD")
	setString(&cfg.AuthCollection, "KNAUGHTS_DB_AUTH_COLLECTION")
	setString(&cfg.KeySalt, "KNAUGHTS_KEY_SALT")
	setString(&cfg.HealthAddr, "KNAUGHTS_HEALTH_ADDR")
	setString(&cfg.LogFormat, "KNAUGHTS_LOG_FORMAT")
	setString(&cfg.ImageLogo, "KNAUGHTS_IMG_LOGO")
	setString(&cfg.ImageQuestion, "KNAUGHTS_IMG_QUESTION")
	setString(&cfg.ImageSad, "KNAUGHTS_IMG_SAD")

	if v, ok := os.LookupEnv("KNAUGHTS_DB_ADMIN_REFRESH_INTERVAL"); ok && v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		cfg.RefreshInterval = timex.Millis(ms)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
